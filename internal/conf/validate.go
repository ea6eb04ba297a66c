// conf/validate.go

package conf

import (
	"fmt"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateMQTTSettings(&settings.MQTT); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateFrigateSettings(&settings.Frigate); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateRecognizerSettings(&settings.Recognizer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWatchlistSettings(&settings.Watchlist); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWorkerSettings(&settings.Workers); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateMQTTSettings(mqtt *MQTTSettings) error {
	if mqtt.Broker == "" {
		return fmt.Errorf("MQTT broker URL is required")
	}
	if !strings.Contains(mqtt.Broker, "://") {
		return fmt.Errorf("MQTT broker URL must include a scheme, e.g. tcp://host:1883")
	}
	if mqtt.MainTopic == "" {
		return fmt.Errorf("MQTT main topic is required")
	}
	return nil
}

func validateFrigateSettings(frigate *FrigateSettings) error {
	if frigate.URL == "" {
		return fmt.Errorf("frigate URL is required")
	}
	if frigate.MaxAttempts < 0 {
		return fmt.Errorf("frigate max attempts must not be negative")
	}
	if frigate.LicensePlateMinScore < 0 || frigate.LicensePlateMinScore > 1 {
		return fmt.Errorf("frigate license plate min score must be between 0 and 1")
	}
	return nil
}

// validateRecognizerSettings enforces that exactly one recognition backend is
// enabled. Backend selection is a capability choice fixed at configuration
// time; selecting neither or both is a startup error.
func validateRecognizerSettings(rec *RecognizerSettings) error {
	switch {
	case rec.PlateRecognizer.Enabled && rec.CodeProject.Enabled:
		return fmt.Errorf("enable only one of platerecognizer and codeproject")
	case !rec.PlateRecognizer.Enabled && !rec.CodeProject.Enabled:
		return fmt.Errorf("enable one of platerecognizer and codeproject")
	}

	if rec.MinScore < 0 || rec.MinScore > 1 {
		return fmt.Errorf("recognizer min score must be between 0 and 1")
	}

	if rec.PlateRecognizer.Enabled {
		if rec.PlateRecognizer.Token == "" {
			return fmt.Errorf("platerecognizer token is required")
		}
		if rec.PlateRecognizer.MaxRetries < 0 {
			return fmt.Errorf("platerecognizer max retries must not be negative")
		}
	}

	if rec.CodeProject.Enabled && rec.CodeProject.APIURL == "" {
		return fmt.Errorf("codeproject API URL is required")
	}

	return nil
}

func validateWatchlistSettings(wl *WatchlistSettings) error {
	if wl.FuzzyMatch < 0 || wl.FuzzyMatch > 1 {
		return fmt.Errorf("watchlist fuzzy match threshold must be between 0 and 1")
	}
	return nil
}

func validateWorkerSettings(w *WorkerSettings) error {
	if w.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if w.QueueSize < 1 {
		return fmt.Errorf("worker queue size must be at least 1")
	}
	return nil
}
