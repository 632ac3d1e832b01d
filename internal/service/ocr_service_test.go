package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loyalty-rewards/internal/models"
	"loyalty-rewards/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func candidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{
						{"text": text},
					},
				},
			},
		},
	}
}

func newTestOCRService(modelURL string) *OCRService {
	return NewOCRService(&config.OCRConfig{
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash",
		BaseURL: modelURL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestExtractEndToEnd(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("fake-jpeg-bytes"))
	}))
	defer imageServer.Close()

	var gotPath string
	var gotRequest map[string]any
	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		json.NewEncoder(w).Encode(candidateResponse("```json\n{\"retailer_name\": \"Shell\", \"retailer_category\": \"fuel\", \"total_amount\": 50.00, \"confidence\": 80}\n```"))
	}))
	defer modelServer.Close()

	svc := newTestOCRService(modelServer.URL)

	extracted, err := svc.Extract(context.Background(), imageServer.URL)
	require.NoError(t, err)

	assert.Equal(t, "Shell", extracted.RetailerName)
	assert.Equal(t, models.CategoryFuel, extracted.Category)
	assert.Equal(t, int64(5000), extracted.TotalCents)
	assert.InDelta(t, 0.80, extracted.Confidence, 1e-9)

	assert.Equal(t, "/models/gemini-1.5-flash:generateContent?key=test-key", gotPath)

	// The request must carry the prompt and the inline image
	contents := gotRequest["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].(map[string]any)["text"], "receipt")
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "image/jpeg", inline["mime_type"])
	assert.NotEmpty(t, inline["data"])
}

func TestExtractNoCandidates(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake-png-bytes"))
	}))
	defer imageServer.Close()

	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer modelServer.Close()

	svc := newTestOCRService(modelServer.URL)

	_, err := svc.Extract(context.Background(), imageServer.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestExtractModelErrorStatus(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-bytes"))
	}))
	defer imageServer.Close()

	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer modelServer.Close()

	svc := newTestOCRService(modelServer.URL)

	_, err := svc.Extract(context.Background(), imageServer.URL)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "OCR API error"))
}

func TestExtractImageFetchFailure(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer imageServer.Close()

	svc := newTestOCRService("http://unused.invalid")

	_, err := svc.Extract(context.Background(), imageServer.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestExtractUnparseableModelText(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-bytes"))
	}))
	defer imageServer.Close()

	modelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("I cannot read this image."))
	}))
	defer modelServer.Close()

	svc := newTestOCRService(modelServer.URL)

	_, err := svc.Extract(context.Background(), imageServer.URL)
	assert.Error(t, err)
}
