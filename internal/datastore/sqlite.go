package datastore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
)

// SQLiteStore implements Interface over a single SQLite database file.
type SQLiteStore struct {
	path    string
	db      *gorm.DB
	metrics *metrics.DatastoreMetrics
	logger  *slog.Logger
}

// NewSQLiteStore creates an unopened store for the given database file path.
func NewSQLiteStore(path string, m *metrics.DatastoreMetrics) *SQLiteStore {
	return &SQLiteStore{
		path:    path,
		metrics: m,
		logger:  logging.ForService("datastore"),
	}
}

// Open creates the database file if needed, opens the connection and runs
// migrations. WAL mode keeps readers unblocked during pipeline writes, and
// the busy timeout covers concurrent workers hitting the single writer lock.
func (s *SQLiteStore) Open() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := s.path + "?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("opening SQLite database %s: %w", s.path, err)
	}

	if err := db.AutoMigrate(&PlateRecord{}); err != nil {
		return fmt.Errorf("migrating database schema: %w", err)
	}

	s.db = db
	s.logger.Info("database opened", "path", s.path)
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("retrieving database handle: %w", err)
	}
	return sqlDB.Close()
}

// InsertPlate implements Interface.
func (s *SQLiteStore) InsertPlate(record *PlateRecord) error {
	if s.db == nil {
		return fmt.Errorf("database is not open")
	}

	if err := s.db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if s.metrics != nil {
				s.metrics.IncrementWrites("duplicate")
			}
			return ErrAlreadyRecorded
		}
		if s.metrics != nil {
			s.metrics.IncrementWrites("error")
			s.metrics.IncrementErrors("insert")
		}
		return fmt.Errorf("inserting plate record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementWrites("success")
	}
	return nil
}

// HasRecorded implements Interface.
func (s *SQLiteStore) HasRecorded(frigateEvent string) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database is not open")
	}

	var count int64
	err := s.db.Model(&PlateRecord{}).
		Where("frigate_event = ?", frigateEvent).
		Count(&count).Error
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementErrors("lookup")
		}
		return false, fmt.Errorf("checking for existing record: %w", err)
	}

	return count > 0, nil
}

// RecentPlates implements Interface.
func (s *SQLiteStore) RecentPlates(limit int) ([]PlateRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database is not open")
	}
	if limit <= 0 {
		limit = 25
	}

	var records []PlateRecord
	err := s.db.Order("detection_time DESC").Limit(limit).Find(&records).Error
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementErrors("lookup")
		}
		return nil, fmt.Errorf("querying recent plates: %w", err)
	}

	return records, nil
}

func newGormLogger() gormlogger.Interface {
	return gormlogger.New(
		slogWriter{logging.ForService("gorm")},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// slogWriter adapts slog to gorm's Printf-style logger.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...any) {
	w.logger.Warn(fmt.Sprintf(format, args...))
}

var _ Interface = (*SQLiteStore)(nil)
