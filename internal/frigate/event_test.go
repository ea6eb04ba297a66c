package frigate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventMessage(t *testing.T) {
	payload := []byte(`{
		"before": {"id": "evt-1", "top_score": 0.71},
		"after": {
			"id": "evt-1",
			"camera": "front",
			"label": "car",
			"current_zones": ["driveway"],
			"current_attributes": [
				{"label": "license_plate", "score": 0.92, "box": [0.1, 0.2, 0.05, 0.02]}
			],
			"has_snapshot": true,
			"start_time": 1717000000.5,
			"top_score": 0.84
		},
		"type": "update"
	}`)

	msg, err := ParseEventMessage(payload)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", msg.After.ID)
	assert.Equal(t, "front", msg.After.Camera)
	assert.Equal(t, "car", msg.After.Label)
	assert.Equal(t, []string{"driveway"}, msg.After.CurrentZones)
	assert.True(t, msg.After.HasSnapshot)
	assert.InDelta(t, 0.71, msg.Before.TopScore, 1e-9)
	assert.InDelta(t, 0.84, msg.After.TopScore, 1e-9)
	assert.False(t, msg.IsEnd())

	plates := msg.After.LicensePlateAttributes()
	require.Len(t, plates, 1)
	assert.InDelta(t, 0.92, plates[0].Score, 1e-9)
}

func TestParseEventMessageEnd(t *testing.T) {
	msg, err := ParseEventMessage([]byte(`{"before": {}, "after": {"id": "evt-2"}, "type": "end"}`))
	require.NoError(t, err)
	assert.True(t, msg.IsEnd())
}

func TestParseEventMessageMalformed(t *testing.T) {
	_, err := ParseEventMessage([]byte(`{not json`))
	require.Error(t, err)
}

func TestParseEventMessageMissingID(t *testing.T) {
	_, err := ParseEventMessage([]byte(`{"before": {}, "after": {}, "type": "update"}`))
	require.Error(t, err)
}

func TestLicensePlateAttributesFiltersOtherLabels(t *testing.T) {
	state := EventState{
		CurrentAttributes: []Attribute{
			{Label: "face", Score: 0.9},
			{Label: "license_plate", Score: 0.8},
			{Label: "license_plate", Score: 0.6},
		},
	}
	plates := state.LicensePlateAttributes()
	require.Len(t, plates, 2)
	assert.InDelta(t, 0.8, plates[0].Score, 1e-9)
}
