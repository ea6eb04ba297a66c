// Package frigate contains the Frigate NVR event types and an HTTP client
// for its API.
package frigate

import (
	"encoding/json"
	"fmt"
)

// Message kinds delivered on the events topic.
const (
	MessageTypeNew    = "new"
	MessageTypeUpdate = "update"
	MessageTypeEnd    = "end"
)

// AttributeLicensePlate is the attribute label Frigate assigns to detected
// license plates when attribute scoring is available.
const AttributeLicensePlate = "license_plate"

// Attribute is one detected sub-object attribute on an event.
type Attribute struct {
	Label string    `json:"label"`
	Score float64   `json:"score"`
	Box   []float64 `json:"box"`
}

// EventState is one snapshot of a tracked object's state, either before or
// after the change that triggered the message.
type EventState struct {
	ID                string      `json:"id"`
	Camera            string      `json:"camera"`
	Label             string      `json:"label"`
	CurrentZones      []string    `json:"current_zones"`
	CurrentAttributes []Attribute `json:"current_attributes"`
	HasSnapshot       bool        `json:"has_snapshot"`
	StartTime         float64     `json:"start_time"`
	TopScore          float64     `json:"top_score"`
}

// EventMessage is one message on the Frigate events topic.
type EventMessage struct {
	Before EventState `json:"before"`
	After  EventState `json:"after"`
	Type   string     `json:"type"`
}

// ParseEventMessage decodes an event message payload. It returns an error for
// malformed JSON or a message without an event id.
func ParseEventMessage(payload []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("malformed event message: %w", err)
	}
	if msg.After.ID == "" {
		return nil, fmt.Errorf("event message has no id")
	}
	return &msg, nil
}

// IsEnd reports whether this is the terminal message of the event lifecycle.
func (m *EventMessage) IsEnd() bool {
	return m.Type == MessageTypeEnd
}

// LicensePlateAttributes returns the license plate attributes present on the
// given state, preserving their order.
func (s *EventState) LicensePlateAttributes() []Attribute {
	var plates []Attribute
	for _, attr := range s.CurrentAttributes {
		if attr.Label == AttributeLicensePlate {
			plates = append(plates, attr)
		}
	}
	return plates
}
