package frigate

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFrigateURL = "http://frigate.test:5000"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(testFrigateURL+"/", 5*time.Second, nil)
	httpmock.ActivateNonDefault(c.http.Unwrap())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestGetSnapshotCropped(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		testFrigateURL+"/api/events/evt-1/snapshot.jpg?crop=1&quality=95",
		httpmock.NewBytesResponder(http.StatusOK, []byte("jpeg-bytes")))

	data, err := c.GetSnapshot(context.Background(), "evt-1", true)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}

func TestGetSnapshotFullFrame(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		testFrigateURL+"/api/events/evt-1/snapshot.jpg?crop=0&quality=95",
		httpmock.NewBytesResponder(http.StatusOK, []byte("full-frame")))

	data, err := c.GetSnapshot(context.Background(), "evt-1", false)
	require.NoError(t, err)
	assert.Equal(t, []byte("full-frame"), data)
}

func TestGetSnapshotNotFound(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		testFrigateURL+"/api/events/evt-1/snapshot.jpg?crop=1&quality=95",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	_, err := c.GetSnapshot(context.Background(), "evt-1", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSetSubLabelUppercasesAndTruncates(t *testing.T) {
	c := newTestClient(t)

	var got struct {
		SubLabel string `json:"subLabel"`
	}
	httpmock.RegisterResponder(http.MethodPost,
		testFrigateURL+"/api/events/evt-1/sub_label",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusOK, `{"success": true}`), nil
		})

	require.NoError(t, c.SetSubLabel(context.Background(), "evt-1", "abcdefghijklmnopqrstuvwxyz", 0.9))
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRST", got.SubLabel)
	assert.Len(t, got.SubLabel, 20)
}

func TestSetSubLabelFailure(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodPost,
		testFrigateURL+"/api/events/evt-1/sub_label",
		httpmock.NewStringResponder(http.StatusUnauthorized, "denied"))

	err := c.SetSubLabel(context.Background(), "evt-1", "ab12cd", 0.9)
	require.Error(t, err)
}

func TestGetFinalPlateAttributes(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		testFrigateURL+"/api/events/evt-1",
		httpmock.NewStringResponder(http.StatusOK, `{
			"data": {
				"attributes": [
					{"label": "face", "score": 0.8, "box": [1, 2, 3, 4]},
					{"label": "license_plate", "score": 0.93, "box": [10, 20, 30, 40]}
				]
			}
		}`))

	plates, err := c.GetFinalPlateAttributes(context.Background(), "evt-1")
	require.NoError(t, err)
	require.Len(t, plates, 1)
	assert.Equal(t, AttributeLicensePlate, plates[0].Label)
	assert.InDelta(t, 0.93, plates[0].Score, 1e-9)
	assert.Equal(t, []float64{10, 20, 30, 40}, plates[0].Box)
}
