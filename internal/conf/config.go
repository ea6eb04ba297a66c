// Package conf defines the application settings and functions to load and
// validate them.
package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MainSettings contains application wide settings.
type MainSettings struct {
	Name string // client name, used as MQTT client id prefix
	Log  struct {
		Enabled bool   // true to write logs to a file in addition to stdout
		Path    string // log file path
	}
}

// MQTTSettings contains settings for the MQTT broker connection.
type MQTTSettings struct {
	Broker      string // broker URL (tcp://host:port)
	Username    string // broker username
	Password    string // broker password
	MainTopic   string // Frigate main topic, events arrive on {maintopic}/events
	ReturnTopic string // recognition results are published to {maintopic}/{returntopic}
}

// FrigateSettings contains settings for the Frigate NVR integration.
type FrigateSettings struct {
	URL                  string        // Frigate base URL
	Plus                 bool          // true when Frigate attribute scoring (Frigate+) is in use
	Cameras              []string      // camera filter, empty allows all cameras
	Zones                []string      // zone filter, empty allows all zones
	Objects              []string      // valid object labels
	LicensePlateMinScore float64       // minimum license_plate attribute score, Frigate+ only
	MaxAttempts          int           // recognition attempt ceiling per event, 0 is unbounded
	RequestTimeout       time.Duration // per request timeout for Frigate API calls
}

// PlateRecognizerSettings contains settings for the Plate Recognizer backend.
type PlateRecognizerSettings struct {
	Enabled    bool
	Token      string   // API token
	Regions    []string // region hints sent with each request
	APIURL     string   // override for the plate-reader endpoint
	MaxRetries int      // retries on top of the initial attempt
	Timeout    time.Duration
}

// CodeProjectSettings contains settings for the CodeProject.AI backend.
type CodeProjectSettings struct {
	Enabled bool
	APIURL  string // ALPR endpoint URL
	Timeout time.Duration
}

// RecognizerSettings selects and configures the recognition backend.
type RecognizerSettings struct {
	MinScore        float64 // recognition confidence floor, 0 disables
	PlateRecognizer PlateRecognizerSettings
	CodeProject     CodeProjectSettings
}

// WatchlistSettings contains the operator maintained plate watch-list.
type WatchlistSettings struct {
	Plates     []string // watched plates, order breaks fuzzy-ratio ties
	FuzzyMatch float64  // fuzzy match threshold in [0,1], 0 disables tier 3
}

// SnapshotSettings controls annotated snapshot persistence.
type SnapshotSettings struct {
	Save    bool   // save a snapshot when a plate was recognized
	Always  bool   // also save when no plate was recognized, requires Save
	DrawBox bool   // draw the license plate bounding box on saved snapshots
	Path    string // directory for saved snapshots
}

// SQLiteSettings contains the SQLite output settings.
type SQLiteSettings struct {
	Path string // path to the SQLite database file
}

// TelemetrySettings contains settings for the metrics/health endpoint.
type TelemetrySettings struct {
	Enabled bool
	Listen  string // listen address, e.g. 0.0.0.0:8080
}

// WorkerSettings sizes the event processing pool.
type WorkerSettings struct {
	Count     int // number of pipeline workers
	QueueSize int // pending message buffer between MQTT and the pool
}

// Settings is the top level configuration struct.
type Settings struct {
	Debug bool

	Main       MainSettings
	MQTT       MQTTSettings
	Frigate    FrigateSettings
	Recognizer RecognizerSettings
	Watchlist  WatchlistSettings
	Snapshots  SnapshotSettings
	Output     struct {
		SQLite SQLiteSettings
	}
	Telemetry TelemetrySettings
	Workers   WorkerSettings
}

// Load reads the configuration file, applies defaults and environment
// overrides, and returns validated settings.
func Load() (*Settings, error) {
	setDefaultConfig()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// PW_MQTT_BROKER overrides mqtt.broker and so on
	viper.SetEnvPrefix("PW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, env overrides and defaults still apply.
	}

	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for the
// configuration file, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		"/config",
		fmt.Sprintf("%s/.config/platewatch", homeDir),
	}, nil
}
