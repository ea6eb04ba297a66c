package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/datastore"
	"github.com/platewatch/platewatch-go/internal/frigate"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
	"github.com/platewatch/platewatch-go/internal/recognizer"
	"github.com/platewatch/platewatch-go/internal/tracker"
)

// Store is the dedup/persistence contract consumed by the pipeline.
type Store interface {
	HasRecorded(frigateEvent string) (bool, error)
	InsertPlate(record *datastore.PlateRecord) error
}

// FrigateAPI is the slice of the Frigate HTTP API the pipeline uses.
type FrigateAPI interface {
	GetSnapshot(ctx context.Context, eventID string, cropped bool) ([]byte, error)
	SetSubLabel(ctx context.Context, eventID, subLabel string, score float64) error
}

// Recognizer runs one recognition attempt over a snapshot.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) recognizer.Recognition
}

// Publisher delivers the outbound recognition result.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// SnapshotSaver persists an annotated snapshot for an event.
type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, event *frigate.EventState, plate string) error
}

// Pipeline processes Frigate event messages end to end. It is safe for
// concurrent use; workers run independent traversals and the datastore's
// unique constraint is the backstop when two workers race on one event.
type Pipeline struct {
	settings   *conf.Settings
	store      Store
	frigate    FrigateAPI
	recognizer Recognizer
	publisher  Publisher
	saver      SnapshotSaver
	tracker    *tracker.EventTracker
	metrics    *metrics.PipelineMetrics
	logger     *slog.Logger

	// firstMessage guards against processing a stale retained delivery on
	// startup.
	firstMessage atomic.Bool
}

// New creates a Pipeline. saver may be nil when snapshot saving is disabled.
func New(settings *conf.Settings, store Store, frigateAPI FrigateAPI, rec Recognizer, publisher Publisher, saver SnapshotSaver, events *tracker.EventTracker, m *metrics.PipelineMetrics) *Pipeline {
	p := &Pipeline{
		settings:   settings,
		store:      store,
		frigate:    frigateAPI,
		recognizer: rec,
		publisher:  publisher,
		saver:      saver,
		tracker:    events,
		metrics:    m,
		logger:     logging.ForService("pipeline"),
	}
	p.firstMessage.Store(true)
	return p
}

// Process runs one full traversal for an inbound event message payload and
// returns its outcome. It never panics; unexpected failures are logged and
// reported as OutcomeError.
func (p *Pipeline) Process(ctx context.Context, payload []byte) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while processing event message", "panic", r)
			outcome = OutcomeError
		}
		if p.metrics != nil {
			p.metrics.IncrementProcessed(string(outcome))
		}
	}()

	// The first delivery after startup may be a retained message for an
	// event long gone.
	if p.firstMessage.CompareAndSwap(true, false) {
		p.logger.Debug("skipping first message after startup")
		return OutcomeFirstMessage
	}

	msg, err := frigate.ParseEventMessage(payload)
	if err != nil {
		p.logger.Error("failed to parse event message", "error", err)
		return OutcomeError
	}

	eventID := msg.After.ID
	logger := p.logger.With("event_id", eventID, "camera", msg.After.Camera, "type", msg.Type)

	if msg.IsEnd() && p.tracker.IsTracked(eventID) {
		p.tracker.Clear(eventID)
		logger.Debug("event ended, tracking cleared")
	}

	if !p.admit(msg, logger) {
		return OutcomeInvalidEvent
	}

	recorded, err := p.store.HasRecorded(eventID)
	if err != nil {
		logger.Error("dedup lookup failed", "error", err)
		return OutcomeDBError
	}
	if recorded {
		logger.Debug("plate already recorded for event")
		return OutcomeDuplicateEvent
	}

	if p.settings.Frigate.Plus && !p.hasQualifyingPlateAttribute(&msg.After, logger) {
		return OutcomeInvalidLicensePlate
	}

	if !msg.IsEnd() && !p.tracker.IsTracked(eventID) {
		p.tracker.Start(eventID)
	}

	if !msg.After.HasSnapshot {
		p.tracker.Clear(eventID)
		logger.Debug("event has no snapshot")
		return OutcomeNoSnapshot
	}

	maxAttempts := p.settings.Frigate.MaxAttempts
	if maxAttempts > 0 && p.tracker.Attempts(eventID) >= maxAttempts {
		logger.Debug("max recognition attempts reached", "max_attempts", maxAttempts)
		return OutcomeMaxAttempts
	}

	attempt := p.tracker.Increment(eventID)

	snapshot, err := p.frigate.GetSnapshot(ctx, eventID, true)
	if err != nil {
		p.tracker.Clear(eventID)
		logger.Warn("snapshot fetch failed", "error", err)
		return OutcomeNoSnapshot
	}

	rec := p.recognizer.Recognize(ctx, snapshot)
	plate := rec.PlateToSave()
	logger.Info("recognition attempt finished",
		"attempt", attempt,
		"plate", plate,
		"score", rec.Score,
		"watched", !rec.Match.IsZero())

	outcome = OutcomeNoPlate
	if plate != "" {
		switch err := p.persist(msg, plate, rec.Score); {
		case errors.Is(err, datastore.ErrAlreadyRecorded):
			logger.Debug("lost persistence race, plate already recorded")
			outcome = OutcomeDuplicateEvent
		case err != nil:
			logger.Error("failed to persist plate", "error", err)
			outcome = OutcomeDBError
		default:
			outcome = OutcomeSuccess
		}
		// Sublabel and result delivery follow the recognition, not the
		// insert: a lost race or a storage failure does not suppress them.
		p.dispatch(ctx, msg, rec, logger)
	}

	if p.settings.Snapshots.Save && (plate != "" || p.settings.Snapshots.Always) {
		p.saveSnapshot(ctx, &msg.After, plate, logger)
	}

	return outcome
}

// admit applies the invalid-event filter: zone, camera and label checks plus
// the score-equality dedup shortcut for deployments without attribute
// scoring.
func (p *Pipeline) admit(msg *frigate.EventMessage, logger *slog.Logger) bool {
	cfg := &p.settings.Frigate
	after := &msg.After

	if len(cfg.Zones) > 0 && !intersects(after.CurrentZones, cfg.Zones) {
		logger.Debug("event zones not watched", "zones", after.CurrentZones)
		return false
	}

	if len(cfg.Cameras) > 0 && !slices.Contains(cfg.Cameras, after.Camera) {
		logger.Debug("camera not watched")
		return false
	}

	if !slices.Contains(cfg.Objects, after.Label) {
		logger.Debug("object label not watched", "label", after.Label)
		return false
	}

	// Without attribute scoring an unchanged top score on a tracked event
	// means the best frame was already submitted; unrelated attribute churn
	// should not trigger another recognition call.
	if !cfg.Plus && msg.Before.TopScore == after.TopScore && p.tracker.IsTracked(after.ID) {
		logger.Debug("top score unchanged for tracked event")
		return false
	}

	return true
}

// hasQualifyingPlateAttribute requires the first license_plate attribute to
// be at or above the configured minimum score.
func (p *Pipeline) hasQualifyingPlateAttribute(after *frigate.EventState, logger *slog.Logger) bool {
	plates := after.LicensePlateAttributes()
	if len(plates) == 0 {
		logger.Debug("no license plate attribute on event")
		return false
	}

	minScore := p.settings.Frigate.LicensePlateMinScore
	if plates[0].Score < minScore {
		logger.Debug("license plate attribute below minimum score",
			"score", plates[0].Score, "min_score", minScore)
		return false
	}

	return true
}

func (p *Pipeline) persist(msg *frigate.EventMessage, plate string, score float64) error {
	return p.store.InsertPlate(&datastore.PlateRecord{
		DetectionTime: eventStartTime(&msg.After),
		Score:         score,
		PlateNumber:   plate,
		FrigateEvent:  msg.After.ID,
		CameraName:    msg.After.Camera,
	})
}

// dispatch pushes the recognized plate back to Frigate as the event sublabel
// and publishes the outbound result. Both are best effort; failures are
// logged and do not change the outcome.
func (p *Pipeline) dispatch(ctx context.Context, msg *frigate.EventMessage, rec recognizer.Recognition, logger *slog.Logger) {
	plate := rec.PlateToSave()

	if err := p.frigate.SetSubLabel(ctx, msg.After.ID, plate, rec.Score); err != nil {
		logger.Warn("failed to set sublabel", "error", err)
	}

	if p.settings.MQTT.ReturnTopic == "" {
		return
	}

	out := newPlateMessage(&msg.After, rec)
	if out.IsWatchedPlate && p.metrics != nil {
		p.metrics.IncrementWatchedPlates()
	}
	payload, err := json.Marshal(out)
	if err != nil {
		logger.Error("failed to encode plate message", "error", err)
		return
	}

	topic := fmt.Sprintf("%s/%s", p.settings.MQTT.MainTopic, p.settings.MQTT.ReturnTopic)
	if err := p.publisher.Publish(ctx, topic, payload); err != nil {
		logger.Warn("failed to publish plate message", "topic", topic, "error", err)
	}
}

func (p *Pipeline) saveSnapshot(ctx context.Context, event *frigate.EventState, plate string, logger *slog.Logger) {
	if p.saver == nil {
		return
	}
	if err := p.saver.SaveSnapshot(ctx, event, plate); err != nil {
		logger.Warn("failed to save snapshot", "error", err)
	}
}

func intersects(a, b []string) bool {
	for _, item := range a {
		if slices.Contains(b, item) {
			return true
		}
	}
	return false
}
