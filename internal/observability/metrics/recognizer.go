package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// RecognizerMetrics contains Prometheus metrics for the recognition backends.
type RecognizerMetrics struct {
	Requests *prometheus.CounterVec
	Errors   *prometheus.CounterVec
}

// NewRecognizerMetrics creates a new instance of RecognizerMetrics registered
// with the provided Prometheus registry.
func NewRecognizerMetrics(registry *prometheus.Registry) (*RecognizerMetrics, error) {
	m := &RecognizerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recognizer_requests_total",
			Help: "Recognition backend calls by backend",
		}, []string{"backend"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recognizer_errors_total",
			Help: "Recognition backend terminal failures by backend",
		}, []string{"backend"}),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.Errors} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register recognizer metrics: %w", err)
		}
	}

	return m, nil
}

// IncrementRequests increments the recognition call counter for a backend.
func (m *RecognizerMetrics) IncrementRequests(backend string) {
	m.Requests.WithLabelValues(backend).Inc()
}

// IncrementErrors increments the terminal failure counter for a backend.
func (m *RecognizerMetrics) IncrementErrors(backend string) {
	m.Errors.WithLabelValues(backend).Inc()
}
