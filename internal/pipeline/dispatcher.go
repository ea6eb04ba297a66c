package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
)

// Dispatcher fans inbound event messages out to a bounded worker pool. Each
// worker runs one full pipeline traversal per message; backoff sleeps and
// backend calls block the worker, capping throughput to the pool size.
type Dispatcher struct {
	pipeline *Pipeline
	queue    chan []byte
	workers  int
	metrics  *metrics.PipelineMetrics
	logger   *slog.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatcher creates a stopped dispatcher over the given pipeline.
func NewDispatcher(p *Pipeline, workers *conf.WorkerSettings, m *metrics.PipelineMetrics) *Dispatcher {
	count := workers.Count
	if count < 1 {
		count = 1
	}
	queueSize := workers.QueueSize
	if queueSize < 1 {
		queueSize = count
	}

	return &Dispatcher{
		pipeline: p,
		queue:    make(chan []byte, queueSize),
		workers:  count,
		metrics:  m,
		logger:   logging.ForService("dispatcher"),
	}
}

// Start launches the worker pool. Workers exit when the queue is closed by
// Stop or when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting event workers", "workers", d.workers, "queue_size", cap(d.queue))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for payload := range d.queue {
		outcome := d.pipeline.Process(ctx, payload)
		d.logger.Debug("event processed", "outcome", string(outcome))
	}
}

// Submit enqueues one event message payload without blocking the transport
// callback. Messages are dropped, and counted, when the queue is full.
func (d *Dispatcher) Submit(payload []byte) bool {
	select {
	case d.queue <- payload:
		return true
	default:
		d.logger.Warn("event queue full, dropping message")
		if d.metrics != nil {
			d.metrics.IncrementQueueDropped()
		}
		return false
	}
}

// Stop closes the queue and drains in-flight work. Safe to call more than
// once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
	d.logger.Info("event workers stopped")
}
