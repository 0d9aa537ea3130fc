package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LatencyBuckets covers round trips from 5ms to 60s.
var LatencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Metrics records per-attempt request counts, retries and latency. A nil
// *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// registerer returns nil. Collectors already registered by another client
// on the same registerer are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mochow_client_requests_total",
				Help: "Requests sent to the Mochow server, one per attempt",
			},
			[]string{"resource", "action", "status"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mochow_client_retries_total",
				Help: "Retries scheduled by the retry policy",
			},
			[]string{"resource", "action"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mochow_client_request_duration_seconds",
				Help:    "Round trip duration per attempt",
				Buckets: LatencyBuckets,
			},
			[]string{"resource", "action"},
		),
	}

	var err error
	if m.RequestsTotal, err = register(reg, m.RequestsTotal); err != nil {
		return nil, err
	}
	if m.RetriesTotal, err = register(reg, m.RetriesTotal); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = register(reg, m.RequestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// observe records one attempt. status is the HTTP status code, or 0 for a
// network failure.
func (m *Metrics) observe(resource, action string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(resource, action, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(resource, action).Observe(elapsed.Seconds())
}

func (m *Metrics) retry(resource, action string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(resource, action).Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "network_error"
	}
	return strconv.Itoa(status)
}
