package recognizer

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch-go/internal/conf"
)

const testPlateReaderURL = "https://api.platerecognizer.test/v1/plate-reader"

func newTestPlateRecognizer(t *testing.T, maxRetries int) *PlateRecognizer {
	t.Helper()
	p := NewPlateRecognizer(&conf.PlateRecognizerSettings{
		Enabled:    true,
		Token:      "test-token",
		Regions:    []string{"us-ca"},
		APIURL:     testPlateReaderURL,
		MaxRetries: maxRetries,
		Timeout:    5 * time.Second,
	})
	// No real sleeping between attempts in tests.
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func TestPlateRecognizerParsesTopResult(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Token test-token", req.Header.Get("Authorization"))
			require.NoError(t, req.ParseMultipartForm(1<<20))
			assert.Equal(t, []string{"us-ca"}, req.MultipartForm.Value["regions"])
			require.Len(t, req.MultipartForm.File["upload"], 1)

			return httpmock.NewStringResponse(http.StatusOK,
				`{"results": [{"plate": "ab12cd", "score": 0.91,
					"candidates": [{"plate": "ab12cd", "score": 0.91}, {"plate": "a812cd", "score": 0.33}]}]}`), nil
		})

	p := newTestPlateRecognizer(t, 0)
	result, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "ab12cd", result.Plate)
	assert.InDelta(t, 0.91, result.Score, 1e-9)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "a812cd", result.Candidates[1].Plate)
	assert.False(t, result.CandidatesIncludePrimary)
}

func TestPlateRecognizerEmptyResults(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		httpmock.NewStringResponder(http.StatusOK, `{"results": []}`))

	p := newTestPlateRecognizer(t, 0)
	result, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Empty(t, result.Plate)
}

func TestPlateRecognizerRetriesOnRateLimit(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusTooManyRequests, `{"detail": "rate limited"}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`{"results": [{"plate": "xy99zz", "score": 0.8, "candidates": []}]}`), nil
		})

	p := newTestPlateRecognizer(t, 3)
	result, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "xy99zz", result.Plate)
	assert.Equal(t, 3, calls)
}

func TestPlateRecognizerExhaustsRetries(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))

	p := newTestPlateRecognizer(t, 2)
	_, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}

func TestPlateRecognizerRetriesOtherNonSuccessStatuses(t *testing.T) {
	// Non-2xx responses other than 429/5xx are retried too, not treated as
	// immediately terminal.
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewStringResponse(http.StatusForbidden, "denied"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`{"results": [{"plate": "ab12cd", "score": 0.9, "candidates": []}]}`), nil
		})

	p := newTestPlateRecognizer(t, 1)
	result, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "ab12cd", result.Plate)
	assert.Equal(t, 2, calls)
}

func TestPlateRecognizerInvalidJSONIsTerminal(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, testPlateReaderURL,
		httpmock.NewStringResponder(http.StatusOK, `{not json`))

	p := newTestPlateRecognizer(t, 3)
	_, err := p.Recognize(context.Background(), []byte("jpeg-bytes"))
	require.Error(t, err)
	// Malformed success responses are not retried.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
