// Package api is the single chokepoint for calls to the inventory backend. It
// attaches the bearer token, encodes bodies and turns every failure into one of a
// closed set of error types before anything above it sees the response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-inventory-ui/internal/utils"
	"github.com/jrsteele09/go-inventory-ui/notify"
	"github.com/jrsteele09/go-inventory-ui/session"
	"github.com/rs/zerolog"
)

const (
	RequestIDHeader       = "X-Request-ID"
	DefaultSuccessMessage = "Operation completed successfully"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// UnauthorizedEvent is emitted after a 401/403 has cleared the session
type UnauthorizedEvent struct {
	Status   int
	Endpoint string
}

// UnauthorizedHandler decides what happens after the session was cleared, usually
// a delayed navigation to the login page.
type UnauthorizedHandler interface {
	HandleUnauthorized(evt UnauthorizedEvent)
}

type UnauthorizedHandlerFunc func(evt UnauthorizedEvent)

func (f UnauthorizedHandlerFunc) HandleUnauthorized(evt UnauthorizedEvent) { f(evt) }

// Response is a successful backend reply. Body is always valid JSON; an empty reply is "{}".
type Response struct {
	Status int
	Header http.Header
	Body   json.RawMessage
}

// Decode unmarshals the body into out
func (r *Response) Decode(out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return &ParseError{Status: r.Status, Raw: string(r.Body), Err: err}
	}
	return nil
}

type Client struct {
	cfg            Config
	store          session.Store
	http           *http.Client
	notifier       notify.Notifier
	onUnauthorized UnauthorizedHandler
	logger         zerolog.Logger
	metrics        *Metrics
}

func New(cfg Config, store session.Store, opts ...ClientOption) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		cfg:      cfg,
		store:    store,
		http:     &http.Client{Timeout: timeout},
		notifier: notify.Nop,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

func (c *Client) Store() session.Store {
	return c.store
}

func (c *Client) Notifier() notify.Notifier {
	return c.notifier
}

func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodGet, endpoint, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, endpoint, body, out, opts)
}

func (c *Client) Put(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, endpoint, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, endpoint string, body, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPatch, endpoint, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, endpoint, nil, out, opts)
}

func (c *Client) call(ctx context.Context, method, endpoint string, body, out any, opts []RequestOption) error {
	resp, err := c.Do(ctx, method, endpoint, body, opts...)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Do sends one request and classifies the outcome. Every other method funnels through here.
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, opts ...RequestOption) (*Response, error) {
	rc := defaultRequestConfig()
	for _, opt := range opts {
		opt(&rc)
	}

	req, err := c.newRequest(ctx, method, endpoint, body, rc)
	if err != nil {
		return nil, err
	}
	requestID := req.Header.Get(RequestIDHeader)

	start := time.Now()
	httpResp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.observe(method, 0, elapsed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn().Err(err).Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Msg("backend unreachable")
		return nil, c.fail(&NetworkError{Err: err}, rc)
	}
	defer httpResp.Body.Close()
	c.metrics.observe(method, httpResp.StatusCode, elapsed)

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, c.fail(&NetworkError{Err: err}, rc)
	}

	c.logger.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", elapsed).
		Str("request_id", requestID).
		Msg("backend call")

	status := httpResp.StatusCode
	switch {
	case isAuthFailure(status):
		return nil, c.unauthorized(status, endpoint, rc)
	case status < 200 || status > 299:
		return nil, c.fail(classify(status, raw), rc)
	}

	trimmed := bytes.TrimSpace(raw)
	if status == http.StatusNoContent || len(trimmed) == 0 {
		trimmed = []byte("{}")
	} else if !json.Valid(trimmed) {
		return nil, c.fail(&ParseError{Status: status, Raw: string(raw)}, rc)
	}

	if rc.showSuccessToast {
		message := rc.successMessage
		if message == "" {
			message = DefaultSuccessMessage
		}
		notify.Success(c.notifier, message)
	}
	return &Response{Status: status, Header: httpResp.Header, Body: json.RawMessage(trimmed)}, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any, rc requestConfig) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		r, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		reader, contentType = r, ct
	case io.Reader:
		reader = b
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, JoinURL(c.cfg.BaseURL, endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !rc.skipAuth && c.store != nil {
		if token := c.store.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

func (c *Client) unauthorized(status int, endpoint string, rc requestConfig) error {
	if c.store != nil {
		c.store.ClearUser()
	}
	err := &UnauthorizedError{Status: status, Endpoint: endpoint}
	if rc.showErrorToast {
		if notice, ok := NoticeFor(err); ok {
			c.notifier.Notify(notice)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized.HandleUnauthorized(UnauthorizedEvent{Status: status, Endpoint: endpoint})
	}
	return err
}

func (c *Client) fail(err error, rc requestConfig) error {
	if rc.showErrorToast {
		if notice, ok := NoticeFor(err); ok {
			c.notifier.Notify(notice)
		}
	}
	return err
}

// errorBody covers the error payload shapes the backend produces
type errorBody struct {
	Message string         `json:"message"`
	Details any            `json:"details"`
	Error   string         `json:"error"`
	Errors  map[string]any `json:"errors"`
}

// classify turns a non-2xx, non-auth response into a ValidationError or HTTPError
func classify(status int, raw []byte) error {
	text := strings.TrimSpace(string(raw))

	var body errorBody
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		message := text
		if message == "" {
			message = genericMessage(status)
		}
		return &HTTPError{Status: status, Message: message}
	}

	message := body.Message
	if message == "" {
		message = strings.Join(utils.ToStringSlice(body.Details), "; ")
	}
	if message == "" {
		message = body.Error
	}

	fields := make(map[string]string, len(body.Errors))
	for name, value := range body.Errors {
		if msg := strings.Join(utils.ToStringSlice(value), "; "); msg != "" {
			fields[name] = msg
		}
	}

	if status >= 400 && status < 500 && len(fields) > 0 {
		if message == "" {
			message = "validation failed"
		}
		return &ValidationError{Status: status, Message: message, Fields: fields}
	}
	if message == "" {
		message = genericMessage(status)
	}
	return &HTTPError{Status: status, Message: message}
}
