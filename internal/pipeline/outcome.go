// Package pipeline orchestrates one full traversal per inbound Frigate event
// message: admission filtering, dedup, attempt bounding, recognition,
// persistence and side-effect dispatch.
package pipeline

// Outcome is the terminal result of processing one event message. Every
// Process call yields exactly one Outcome.
type Outcome string

const (
	OutcomeFirstMessage        Outcome = "first_message"
	OutcomeInvalidEvent        Outcome = "invalid_event"
	OutcomeDuplicateEvent      Outcome = "duplicate_event"
	OutcomeInvalidLicensePlate Outcome = "invalid_license_plate"
	OutcomeNoSnapshot          Outcome = "no_snapshot"
	OutcomeMaxAttempts         Outcome = "max_attempts"
	OutcomeNoPlate             Outcome = "no_plate"
	OutcomeSuccess             Outcome = "success"
	OutcomeDBError             Outcome = "db_error"
	OutcomeError               Outcome = "error"
)
