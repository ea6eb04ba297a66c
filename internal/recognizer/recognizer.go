// Package recognizer submits snapshots to an external license plate
// recognition backend and resolves the result against the plate watch-list.
package recognizer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
	"github.com/platewatch/platewatch-go/internal/watchlist"
)

// Result is the normalized output of a recognition backend. An empty Plate
// means no plate was recognized.
type Result struct {
	// Plate is the backend's top plate reading.
	Plate string
	// Score is the confidence of the top reading.
	Score float64
	// Candidates are alternate readings in backend order.
	Candidates []watchlist.Candidate
	// CandidatesIncludePrimary is true when Candidates[0] duplicates the top
	// plate rather than being an alternate.
	CandidatesIncludePrimary bool
}

// Backend is one external license plate recognition service. Exactly one
// backend is active per deployment, selected at startup.
type Backend interface {
	// Recognize submits the JPEG image and returns the parsed result. A
	// response without plates yields an empty Result and no error.
	Recognize(ctx context.Context, image []byte) (Result, error)

	// Name identifies the backend in logs and metrics.
	Name() string
}

// Recognition is the pipeline-facing outcome of one recognition call. The
// zero value means no usable plate.
type Recognition struct {
	// Plate is the raw recognized plate, "" when none qualified.
	Plate string
	// Score is the recognition confidence; when the watch-list matched via
	// the candidate list this is the candidate's own confidence.
	Score float64
	// Match is the watch-list resolution outcome.
	Match watchlist.Match
}

// PlateToSave returns the plate value to persist: a watch-list override takes
// precedence over the raw recognized plate.
func (r Recognition) PlateToSave() string {
	if !r.Match.IsZero() {
		return r.Match.Plate
	}
	return r.Plate
}

// Client wraps the active backend with watch-list resolution and the
// configured recognition score floor.
type Client struct {
	backend  Backend
	matcher  *watchlist.Matcher
	minScore float64
	metrics  *metrics.RecognizerMetrics
	logger   *slog.Logger
}

// NewClient creates a recognition client over the given backend. A minScore
// of 0 disables the confidence floor.
func NewClient(backend Backend, matcher *watchlist.Matcher, minScore float64, m *metrics.RecognizerMetrics) *Client {
	return &Client{
		backend:  backend,
		matcher:  matcher,
		minScore: minScore,
		metrics:  m,
		logger:   logging.ForService("recognizer"),
	}
}

// Recognize runs one recognition attempt. Backend failures never propagate:
// they are logged, counted and reported as an empty Recognition.
func (c *Client) Recognize(ctx context.Context, image []byte) Recognition {
	if c.metrics != nil {
		c.metrics.IncrementRequests(c.backend.Name())
	}

	result, err := c.backend.Recognize(ctx, image)
	if err != nil {
		c.logger.Error("recognition failed", "backend", c.backend.Name(), "error", err)
		if c.metrics != nil {
			c.metrics.IncrementErrors(c.backend.Name())
		}
		return Recognition{}
	}

	if result.Plate == "" {
		c.logger.Debug("no plates found", "backend", c.backend.Name())
		return Recognition{}
	}

	match := c.matcher.Resolve(result.Plate, result.Candidates, result.CandidatesIncludePrimary)

	rec := Recognition{
		Plate: result.Plate,
		Score: result.Score,
		Match: match,
	}
	if match.Score != nil {
		// A candidate revealed the watched plate; its own confidence
		// replaces the top reading's score.
		rec.Score = *match.Score
	}

	// The score floor does not apply to fuzzy matches: their confidence is a
	// string similarity ratio, not a recognition confidence.
	if match.FuzzyScore == nil && c.minScore > 0 && rec.Score < c.minScore {
		c.logger.Info("score below minimum",
			"backend", c.backend.Name(),
			"plate", rec.Plate,
			"score", rec.Score,
			"min_score", c.minScore)
		return Recognition{}
	}

	return rec
}

// encodeImageUpload builds a multipart form body carrying the snapshot as the
// "upload" file plus any extra repeated form fields.
func encodeImageUpload(image []byte, fields map[string][]string) (body *bytes.Buffer, contentType string, err error) {
	body = &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(name, value); err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", name, err)
			}
		}
	}

	part, err := writer.CreateFormFile("upload", "snapshot.jpg")
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, "", fmt.Errorf("writing image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
