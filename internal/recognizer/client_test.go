package recognizer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platewatch/platewatch-go/internal/watchlist"
)

// stubBackend returns a fixed result or error.
type stubBackend struct {
	result Result
	err    error
}

func (s *stubBackend) Recognize(ctx context.Context, image []byte) (Result, error) {
	return s.result, s.err
}

func (s *stubBackend) Name() string { return "stub" }

func TestClientBackendErrorYieldsEmptyRecognition(t *testing.T) {
	backend := &stubBackend{err: errors.New("service unavailable")}
	client := NewClient(backend, watchlist.New(nil, 0), 0, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Empty(t, rec.Plate)
	assert.True(t, rec.Match.IsZero())
}

func TestClientNoPlateYieldsEmptyRecognition(t *testing.T) {
	backend := &stubBackend{result: Result{}}
	client := NewClient(backend, watchlist.New(nil, 0), 0, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Empty(t, rec.Plate)
}

func TestClientScoreFloorRejectsLowConfidence(t *testing.T) {
	backend := &stubBackend{result: Result{Plate: "ab12cd", Score: 0.4}}
	client := NewClient(backend, watchlist.New(nil, 0), 0.7, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Empty(t, rec.Plate)
}

func TestClientScoreFloorAcceptsHighConfidence(t *testing.T) {
	backend := &stubBackend{result: Result{Plate: "ab12cd", Score: 0.92}}
	client := NewClient(backend, watchlist.New(nil, 0), 0.7, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Equal(t, "ab12cd", rec.Plate)
	assert.InDelta(t, 0.92, rec.Score, 1e-9)
	assert.Equal(t, "ab12cd", rec.PlateToSave())
}

func TestClientFuzzyMatchExemptFromScoreFloor(t *testing.T) {
	// The recognition confidence 0.5 is below the 0.9 floor, but a fuzzy
	// watch-list match is scored by string similarity, not recognition
	// confidence, and is exempt from the floor.
	backend := &stubBackend{result: Result{Plate: "abc12d", Score: 0.5}}
	client := NewClient(backend, watchlist.New([]string{"ABC123"}, 0.8), 0.9, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Equal(t, "abc12d", rec.Plate)
	assert.InDelta(t, 0.5, rec.Score, 1e-9)
	assert.False(t, rec.Match.IsZero())
	assert.Equal(t, "abc123", rec.Match.Plate)
	assert.NotNil(t, rec.Match.FuzzyScore)
	assert.Equal(t, "abc123", rec.PlateToSave())
}

func TestClientCandidateMatchReplacesScore(t *testing.T) {
	backend := &stubBackend{result: Result{
		Plate: "ab12cd",
		Score: 0.95,
		Candidates: []watchlist.Candidate{
			{Plate: "a812cd", Score: 0.81},
		},
	}}
	client := NewClient(backend, watchlist.New([]string{"A812CD"}, 0), 0.5, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Equal(t, "a812cd", rec.Match.Plate)
	assert.InDelta(t, 0.81, rec.Score, 1e-9)
	assert.Equal(t, "a812cd", rec.PlateToSave())
}

func TestClientCandidateScoreSubjectToFloor(t *testing.T) {
	// When a candidate match replaces the score, the floor applies to the
	// replacement score.
	backend := &stubBackend{result: Result{
		Plate: "ab12cd",
		Score: 0.95,
		Candidates: []watchlist.Candidate{
			{Plate: "a812cd", Score: 0.3},
		},
	}}
	client := NewClient(backend, watchlist.New([]string{"A812CD"}, 0), 0.5, nil)

	rec := client.Recognize(context.Background(), []byte("img"))
	assert.Empty(t, rec.Plate)
}

func TestPlateToSavePrecedence(t *testing.T) {
	assert.Equal(t, "raw", Recognition{Plate: "raw"}.PlateToSave())

	score := 0.8
	withMatch := Recognition{Plate: "raw", Match: watchlist.Match{Plate: "watched", Score: &score}}
	assert.Equal(t, "watched", withMatch.PlateToSave())
}
