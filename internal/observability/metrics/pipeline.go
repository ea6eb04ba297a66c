package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics contains Prometheus metrics for the event pipeline.
type PipelineMetrics struct {
	ProcessedEvents *prometheus.CounterVec
	TrackedEvents   prometheus.Gauge
	QueueDropped    prometheus.Counter
	WatchedPlates   prometheus.Counter
}

// NewPipelineMetrics creates a new instance of PipelineMetrics registered
// with the provided Prometheus registry.
func NewPipelineMetrics(registry *prometheus.Registry) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		ProcessedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "processed_events_total",
			Help: "Number of events processed categorised by result",
		}, []string{"result"}),
		TrackedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "current_events_tracked",
			Help: "Number of events currently tracked",
		}),
		QueueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_queue_dropped_total",
			Help: "Number of event messages dropped because the worker queue was full",
		}),
		WatchedPlates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watched_plates_total",
			Help: "Number of recognitions that resolved to a watch-list entry",
		}),
	}

	collectors := []prometheus.Collector{
		m.ProcessedEvents,
		m.TrackedEvents,
		m.QueueDropped,
		m.WatchedPlates,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register pipeline metrics: %w", err)
		}
	}

	return m, nil
}

// IncrementProcessed increments the processed events counter for the given
// pipeline result.
func (m *PipelineMetrics) IncrementProcessed(result string) {
	m.ProcessedEvents.WithLabelValues(result).Inc()
}

// SetTrackedEvents records the number of events currently tracked.
func (m *PipelineMetrics) SetTrackedEvents(n int) {
	m.TrackedEvents.Set(float64(n))
}

// IncrementQueueDropped increments the dropped message counter.
func (m *PipelineMetrics) IncrementQueueDropped() {
	m.QueueDropped.Inc()
}

// IncrementWatchedPlates increments the watch-list hit counter.
func (m *PipelineMetrics) IncrementWatchedPlates() {
	m.WatchedPlates.Inc()
}
