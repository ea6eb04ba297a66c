// Package datastore persists recognized plates and answers the dedup
// question of whether a Frigate event was already recorded.
package datastore

import (
	"errors"
	"fmt"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
)

// ErrAlreadyRecorded is returned by InsertPlate when a record for the same
// Frigate event already exists.
var ErrAlreadyRecorded = errors.New("plate already recorded for event")

// Interface abstracts plate persistence.
type Interface interface {
	Open() error
	Close() error

	// InsertPlate stores one recognized plate. It returns ErrAlreadyRecorded
	// when the event was persisted before.
	InsertPlate(record *PlateRecord) error

	// HasRecorded reports whether a plate was already stored for the event.
	HasRecorded(frigateEvent string) (bool, error)

	// RecentPlates returns the newest records, most recent first.
	RecentPlates(limit int) ([]PlateRecord, error)
}

// New creates the datastore configured in settings. SQLite is the only
// supported backend.
func New(settings *conf.Settings, m *metrics.DatastoreMetrics) (Interface, error) {
	if settings.Output.SQLite.Path == "" {
		return nil, fmt.Errorf("no database path configured")
	}
	return NewSQLiteStore(settings.Output.SQLite.Path, m), nil
}
