package snapshots

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/frigate"
)

type fakeFrigate struct {
	snapshot    []byte
	snapshotErr error
	attributes  []frigate.Attribute
}

func (f *fakeFrigate) GetSnapshot(ctx context.Context, eventID string, cropped bool) ([]byte, error) {
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	return f.snapshot, nil
}

func (f *fakeFrigate) GetFinalPlateAttributes(ctx context.Context, eventID string) ([]frigate.Attribute, error) {
	return f.attributes, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newTestSaver(t *testing.T, settings *conf.SnapshotSettings, api FrigateAPI) *Saver {
	t.Helper()
	s := New(settings, api)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC) }
	return s
}

func testEvent() *frigate.EventState {
	return &frigate.EventState{ID: "evt-1", Camera: "front"}
}

func TestSaveSnapshotWritesFile(t *testing.T) {
	dir := t.TempDir()
	api := &fakeFrigate{snapshot: testJPEG(t)}
	s := newTestSaver(t, &conf.SnapshotSettings{Path: dir}, api)

	require.NoError(t, s.SaveSnapshot(context.Background(), testEvent(), "ab12cd"))

	path := filepath.Join(dir, "AB12CD_front_20240501_123045.jpg")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, api.snapshot, data)
}

func TestSaveSnapshotWithoutPlate(t *testing.T) {
	dir := t.TempDir()
	s := newTestSaver(t, &conf.SnapshotSettings{Path: dir}, &fakeFrigate{snapshot: testJPEG(t)})

	require.NoError(t, s.SaveSnapshot(context.Background(), testEvent(), ""))

	_, err := os.Stat(filepath.Join(dir, "NO_PLATE_front_20240501_123045.jpg"))
	assert.NoError(t, err)
}

func TestSaveSnapshotFetchFailure(t *testing.T) {
	s := newTestSaver(t, &conf.SnapshotSettings{Path: t.TempDir()},
		&fakeFrigate{snapshotErr: errors.New("connection refused")})

	err := s.SaveSnapshot(context.Background(), testEvent(), "ab12cd")
	assert.Error(t, err)
}

func TestSaveSnapshotDrawsBox(t *testing.T) {
	dir := t.TempDir()
	api := &fakeFrigate{snapshot: testJPEG(t)}
	s := newTestSaver(t, &conf.SnapshotSettings{Path: dir, DrawBox: true}, api)

	event := testEvent()
	event.CurrentAttributes = []frigate.Attribute{
		{Label: frigate.AttributeLicensePlate, Score: 0.9, Box: []float64{10, 10, 40, 30}},
	}

	require.NoError(t, s.SaveSnapshot(context.Background(), event, "ab12cd"))

	data, err := os.ReadFile(filepath.Join(dir, "AB12CD_front_20240501_123045.jpg"))
	require.NoError(t, err)
	assert.NotEqual(t, api.snapshot, data)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// The box edge should be strongly red against the blue frame.
	r, _, b, _ := img.At(20, 10).RGBA()
	assert.Greater(t, r, b)
}

func TestSaveSnapshotBoxFromFinalAttributes(t *testing.T) {
	dir := t.TempDir()
	api := &fakeFrigate{
		snapshot: testJPEG(t),
		attributes: []frigate.Attribute{
			{Label: frigate.AttributeLicensePlate, Score: 0.9, Box: []float64{5, 5, 20, 15}},
		},
	}
	s := newTestSaver(t, &conf.SnapshotSettings{Path: dir, DrawBox: true}, api)

	require.NoError(t, s.SaveSnapshot(context.Background(), testEvent(), "ab12cd"))

	data, err := os.ReadFile(filepath.Join(dir, "AB12CD_front_20240501_123045.jpg"))
	require.NoError(t, err)
	assert.NotEqual(t, api.snapshot, data)
}

func TestSaveSnapshotAnnotationFailureFallsBack(t *testing.T) {
	// No box anywhere: the unmodified frame is still saved.
	dir := t.TempDir()
	api := &fakeFrigate{snapshot: testJPEG(t)}
	s := newTestSaver(t, &conf.SnapshotSettings{Path: dir, DrawBox: true}, api)

	require.NoError(t, s.SaveSnapshot(context.Background(), testEvent(), "ab12cd"))

	data, err := os.ReadFile(filepath.Join(dir, "AB12CD_front_20240501_123045.jpg"))
	require.NoError(t, err)
	assert.Equal(t, api.snapshot, data)
}
