package frigate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/platewatch/platewatch-go/internal/httpclient"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/observability/metrics"
)

// Frigate truncates sublabels beyond this length.
const maxSubLabelLength = 20

const metricsService = "frigate"

// Client talks to the Frigate HTTP API.
type Client struct {
	baseURL string
	http    *httpclient.Client
	metrics *metrics.HTTPMetrics
	logger  *slog.Logger
}

// NewClient creates a Frigate API client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, httpMetrics *metrics.HTTPMetrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: httpclient.New(&httpclient.Config{
			DefaultTimeout: timeout,
		}),
		metrics: httpMetrics,
		logger:  logging.ForService("frigate"),
	}
}

// GetSnapshot fetches the JPEG snapshot for an event. When cropped is true
// the snapshot is cropped to the detected object.
func (c *Client) GetSnapshot(ctx context.Context, eventID string, cropped bool) ([]byte, error) {
	crop := 0
	if cropped {
		crop = 1
	}
	url := fmt.Sprintf("%s/api/events/%s/snapshot.jpg?crop=%d&quality=95", c.baseURL, eventID, crop)
	c.logger.Debug("fetching snapshot", "event_id", eventID, "cropped", cropped)

	start := time.Now()
	resp, err := c.http.Get(ctx, url)
	c.observe("snapshot", start)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot for event %s: %w", eventID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching snapshot for event %s: unexpected status %d", eventID, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot for event %s: %w", eventID, err)
	}
	return data, nil
}

// SetSubLabel pushes the recognized plate back to Frigate as the event's
// sublabel. Plates are always upper cased and truncated to Frigate's limit.
func (c *Client) SetSubLabel(ctx context.Context, eventID, subLabel string, score float64) error {
	if len(subLabel) > maxSubLabelLength {
		subLabel = subLabel[:maxSubLabelLength]
	}
	subLabel = strings.ToUpper(subLabel)

	payload, err := json.Marshal(map[string]string{"subLabel": subLabel})
	if err != nil {
		return fmt.Errorf("encoding sublabel payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/events/%s/sub_label", c.baseURL, eventID)

	start := time.Now()
	resp, err := c.http.Post(ctx, url, "application/json", bytes.NewReader(payload))
	c.observe("set_sublabel", start)
	if err != nil {
		return fmt.Errorf("setting sublabel for event %s: %w", eventID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("setting sublabel for event %s: status %d: %s", eventID, resp.StatusCode, string(body))
	}

	c.logger.Info("sublabel set", "event_id", eventID, "sublabel", subLabel, "score", score)
	return nil
}

// GetFinalPlateAttributes fetches the event's stored attribute data and
// returns its license plate attributes. Only meaningful on deployments with
// attribute scoring, where the final event record carries the plate box used
// for snapshot annotation.
func (c *Client) GetFinalPlateAttributes(ctx context.Context, eventID string) ([]Attribute, error) {
	url := fmt.Sprintf("%s/api/events/%s", c.baseURL, eventID)

	start := time.Now()
	resp, err := c.http.Get(ctx, url)
	c.observe("event_data", start)
	if err != nil {
		return nil, fmt.Errorf("fetching event %s: %w", eventID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching event %s: unexpected status %d", eventID, resp.StatusCode)
	}

	var event struct {
		Data struct {
			Attributes []Attribute `json:"attributes"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return nil, fmt.Errorf("parsing event %s: %w", eventID, err)
	}

	var plates []Attribute
	for _, attr := range event.Data.Attributes {
		if attr.Label == AttributeLicensePlate {
			plates = append(plates, attr)
		}
	}
	return plates, nil
}

func (c *Client) observe(operation string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequestDuration(metricsService, operation, time.Since(start))
	}
}
