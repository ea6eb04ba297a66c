package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for datastore operations.
type DatastoreMetrics struct {
	Writes *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewDatastoreMetrics creates a new instance of DatastoreMetrics registered
// with the provided Prometheus registry.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_writes_total",
			Help: "Database write operations by status",
		}, []string{"status"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Database errors by operation",
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{m.Writes, m.Errors} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register datastore metrics: %w", err)
		}
	}

	return m, nil
}

// IncrementWrites increments the write counter with the given status.
func (m *DatastoreMetrics) IncrementWrites(status string) {
	m.Writes.WithLabelValues(status).Inc()
}

// IncrementErrors increments the error counter for the given operation.
func (m *DatastoreMetrics) IncrementErrors(operation string) {
	m.Errors.WithLabelValues(operation).Inc()
}
