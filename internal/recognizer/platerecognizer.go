package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/watchlist"
)

// DefaultPlateRecognizerURL is the hosted plate-reader endpoint.
const DefaultPlateRecognizerURL = "https://api.platerecognizer.com/v1/plate-reader"

// PlateRecognizer is the bounded-retry backend for the Plate Recognizer API.
type PlateRecognizer struct {
	apiURL     string
	token      string
	regions    []string
	maxRetries int
	httpClient *http.Client
	logger     *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

type plateRecognizerResponse struct {
	Results []struct {
		Plate      string  `json:"plate"`
		Score      float64 `json:"score"`
		Candidates []struct {
			Plate string  `json:"plate"`
			Score float64 `json:"score"`
		} `json:"candidates"`
	} `json:"results"`
}

// NewPlateRecognizer creates the Plate Recognizer backend from settings.
func NewPlateRecognizer(settings *conf.PlateRecognizerSettings) *PlateRecognizer {
	apiURL := settings.APIURL
	if apiURL == "" {
		apiURL = DefaultPlateRecognizerURL
	}

	return &PlateRecognizer{
		apiURL:     apiURL,
		token:      settings.Token,
		regions:    settings.Regions,
		maxRetries: settings.MaxRetries,
		httpClient: &http.Client{Timeout: settings.Timeout},
		logger:     logging.ForService("platerecognizer"),
		sleep:      sleepWithContext,
	}
}

// Name implements Backend.
func (p *PlateRecognizer) Name() string { return "plate_recognizer" }

// Recognize submits the snapshot with bounded retries. Transport failures,
// HTTP 429 and other non-2xx responses are retried with exponential backoff
// until the attempt budget is exhausted.
func (p *PlateRecognizer) Recognize(ctx context.Context, image []byte) (Result, error) {
	attempts := p.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, retryable, err := p.attempt(ctx, image)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable || attempt == attempts {
			break
		}

		delay := RetryDelay(attempt)
		p.logger.Warn("recognition attempt failed, retrying",
			"attempt", attempt,
			"attempts", attempts,
			"delay", delay,
			"error", err)
		if err := p.sleep(ctx, delay); err != nil {
			return Result{}, err
		}
	}

	return Result{}, fmt.Errorf("plate recognizer request failed after %d attempts: %w", attempts, lastErr)
}

// attempt performs a single upload. retryable reports whether the failure is
// worth another attempt.
func (p *PlateRecognizer) attempt(ctx context.Context, image []byte) (result Result, retryable bool, err error) {
	fields := map[string][]string{}
	if len(p.regions) > 0 {
		fields["regions"] = p.regions
	}

	body, contentType, err := encodeImageUpload(image, fields)
	if err != nil {
		return Result{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, body)
	if err != nil {
		return Result{}, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Token "+p.token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Result{}, true, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, true, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(detail))
	}

	var payload plateRecognizerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		// Malformed success responses are terminal, retrying will not fix them.
		return Result{}, false, fmt.Errorf("invalid JSON response: %w", err)
	}

	if len(payload.Results) == 0 {
		p.logger.Debug("no plates found in response")
		return Result{}, false, nil
	}

	top := payload.Results[0]
	candidates := make([]watchlist.Candidate, 0, len(top.Candidates))
	for _, c := range top.Candidates {
		candidates = append(candidates, watchlist.Candidate{Plate: c.Plate, Score: c.Score})
	}

	return Result{
		Plate:      top.Plate,
		Score:      top.Score,
		Candidates: candidates,
	}, false, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
