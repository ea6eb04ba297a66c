package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/watchlist"
)

// CodeProject is the single-attempt backend for the CodeProject.AI ALPR
// module.
type CodeProject struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

type codeProjectResponse struct {
	Predictions []struct {
		Plate      string  `json:"plate"`
		Confidence float64 `json:"confidence"`
	} `json:"predictions"`
}

// NewCodeProject creates the CodeProject.AI backend from settings.
func NewCodeProject(settings *conf.CodeProjectSettings) *CodeProject {
	return &CodeProject{
		apiURL:     settings.APIURL,
		httpClient: &http.Client{Timeout: settings.Timeout},
		logger:     logging.ForService("codeproject"),
	}
}

// Name implements Backend.
func (c *CodeProject) Name() string { return "code_project" }

// Recognize submits the snapshot once; there is no retry. The predictions
// list is carried as candidates with index 0 flagged as the primary
// detection, since this backend's first prediction duplicates the top plate.
func (c *CodeProject) Recognize(ctx context.Context, image []byte) (Result, error) {
	body, contentType, err := encodeImageUpload(image, nil)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, body)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var payload codeProjectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{}, fmt.Errorf("invalid JSON response: %w", err)
	}

	if len(payload.Predictions) == 0 {
		c.logger.Debug("no plates found in response")
		return Result{}, nil
	}

	candidates := make([]watchlist.Candidate, 0, len(payload.Predictions))
	for _, p := range payload.Predictions {
		candidates = append(candidates, watchlist.Candidate{Plate: p.Plate, Score: p.Confidence})
	}

	top := payload.Predictions[0]
	return Result{
		Plate:                    top.Plate,
		Score:                    top.Confidence,
		Candidates:               candidates,
		CandidatesIncludePrimary: true,
	}, nil
}

var _ Backend = (*CodeProject)(nil)
var _ Backend = (*PlateRecognizer)(nil)

// NewBackend selects and builds the configured backend. Settings validation
// guarantees exactly one backend is enabled before this is called.
func NewBackend(settings *conf.RecognizerSettings) (Backend, error) {
	switch {
	case settings.PlateRecognizer.Enabled:
		return NewPlateRecognizer(&settings.PlateRecognizer), nil
	case settings.CodeProject.Enabled:
		return NewCodeProject(&settings.CodeProject), nil
	default:
		return nil, fmt.Errorf("no recognition backend enabled")
	}
}
