package pipeline

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/platewatch/platewatch-go/internal/frigate"
	"github.com/platewatch/platewatch-go/internal/recognizer"
)

// startTimeLayout matches the timestamp format consumers of the result topic
// already parse.
const startTimeLayout = "2006-01-02 15:04:05"

// PlateMessage is the outbound recognition result published to
// {maintopic}/{returntopic}.
type PlateMessage struct {
	PlateNumber    string   `json:"plate_number"`
	Score          float64  `json:"score"`
	FrigateEventID string   `json:"frigate_event_id"`
	CameraName     string   `json:"camera_name"`
	StartTime      string   `json:"start_time"`
	IsWatchedPlate bool     `json:"is_watched_plate"`
	OriginalPlate  string   `json:"original_plate,omitempty"`
	FuzzyScore     *float64 `json:"fuzzy_score,omitempty"`
}

// MarshalJSON emits the watch-list fields only on watched messages, with
// fuzzy_score always present there (null for exact and candidate matches).
func (m *PlateMessage) MarshalJSON() ([]byte, error) {
	type base struct {
		PlateNumber    string  `json:"plate_number"`
		Score          float64 `json:"score"`
		FrigateEventID string  `json:"frigate_event_id"`
		CameraName     string  `json:"camera_name"`
		StartTime      string  `json:"start_time"`
		IsWatchedPlate bool    `json:"is_watched_plate"`
	}
	b := base{m.PlateNumber, m.Score, m.FrigateEventID, m.CameraName, m.StartTime, m.IsWatchedPlate}
	if !m.IsWatchedPlate {
		return json.Marshal(b)
	}
	return json.Marshal(struct {
		base
		FuzzyScore    *float64 `json:"fuzzy_score"`
		OriginalPlate string   `json:"original_plate"`
	}{b, m.FuzzyScore, m.OriginalPlate})
}

// newPlateMessage builds the outbound message for a recognition. A watch-list
// override replaces the plate number and carries the raw recognition
// alongside it.
func newPlateMessage(event *frigate.EventState, rec recognizer.Recognition) *PlateMessage {
	msg := &PlateMessage{
		PlateNumber:    strings.ToUpper(rec.PlateToSave()),
		Score:          rec.Score,
		FrigateEventID: event.ID,
		CameraName:     event.Camera,
		StartTime:      eventStartTime(event).Format(startTimeLayout),
	}

	if !rec.Match.IsZero() {
		msg.IsWatchedPlate = true
		msg.OriginalPlate = strings.ToUpper(rec.Plate)
		msg.FuzzyScore = rec.Match.FuzzyScore
	}

	return msg
}

// eventStartTime converts Frigate's fractional unix timestamp.
func eventStartTime(event *frigate.EventState) time.Time {
	sec := int64(event.StartTime)
	nsec := int64((event.StartTime - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
