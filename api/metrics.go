package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound backend calls
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors with reg. Registering twice against the
// same registry reuses the collectors already there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inventory",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"method", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inventory",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	if reg != nil {
		requests = register(reg, requests)
		duration = register(reg, duration)
	}
	return &Metrics{requests: requests, duration: duration}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing
		}
	}
	return c
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
