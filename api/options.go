package api

import (
	"net/http"

	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/rs/zerolog"
)

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithNotifier(n notify.Notifier) ClientOption {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithUnauthorizedHandler(h UnauthorizedHandler) ClientOption {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// requestConfig controls the side effects of a single call
type requestConfig struct {
	showErrorToast   bool
	showSuccessToast bool
	successMessage   string
	skipAuth         bool
}

func defaultRequestConfig() requestConfig {
	return requestConfig{showErrorToast: true}
}

type RequestOption func(*requestConfig)

// WithoutErrorToast leaves error presentation to the caller
func WithoutErrorToast() RequestOption {
	return func(rc *requestConfig) {
		rc.showErrorToast = false
	}
}

// WithSuccessToast fires a success notice with message once the call succeeds
func WithSuccessToast(message string) RequestOption {
	return func(rc *requestConfig) {
		rc.showSuccessToast = true
		rc.successMessage = message
	}
}

// SkipAuth sends the request without the bearer token, as the sign-in and sign-up calls do
func SkipAuth() RequestOption {
	return func(rc *requestConfig) {
		rc.skipAuth = true
	}
}
