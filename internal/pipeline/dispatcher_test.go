package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/frigate"
)

func TestDispatcherProcessesSubmittedMessages(t *testing.T) {
	f := newFixture(t, testSettings())
	f.recognizer.result = recognized("ab12cd", 0.91)

	d := NewDispatcher(f.pipeline, &conf.WorkerSettings{Count: 4, QueueSize: 16}, nil)
	d.Start(context.Background())

	for i := 0; i < 8; i++ {
		n := i
		payload := eventPayload(t, func(msg *frigate.EventMessage) {
			msg.After.ID = "evt-" + string(rune('a'+n))
			msg.Before.ID = msg.After.ID
		})
		require.True(t, d.Submit(payload))
	}

	d.Stop()

	// Every event persisted exactly once after drain.
	assert.Len(t, f.store.records, 8)
	assert.Equal(t, 8, f.publisher.published())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	f := newFixture(t, testSettings())

	// Workers not started, so the queue fills immediately.
	d := NewDispatcher(f.pipeline, &conf.WorkerSettings{Count: 1, QueueSize: 1}, nil)

	assert.True(t, d.Submit(eventPayload(t, nil)))
	assert.False(t, d.Submit(eventPayload(t, nil)))
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	f := newFixture(t, testSettings())
	d := NewDispatcher(f.pipeline, &conf.WorkerSettings{Count: 2, QueueSize: 4}, nil)
	d.Start(context.Background())

	d.Stop()
	d.Stop()
}
