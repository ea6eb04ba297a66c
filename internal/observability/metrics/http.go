package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics contains Prometheus metrics for outbound HTTP requests.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates a new instance of HTTPMetrics registered with the
// provided Prometheus registry.
func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Outbound HTTP request duration by service and operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}

	if err := registry.Register(m.RequestDuration); err != nil {
		return nil, fmt.Errorf("failed to register HTTP metrics: %w", err)
	}

	return m, nil
}

// ObserveRequestDuration records the duration of an outbound HTTP request.
func (m *HTTPMetrics) ObserveRequestDuration(service, operation string, d time.Duration) {
	m.RequestDuration.WithLabelValues(service, operation).Observe(d.Seconds())
}
