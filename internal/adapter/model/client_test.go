package model

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func samplePoints(n int) []domain.SamplePoint {
	points := make([]domain.SamplePoint, n)
	for i := range points {
		features := make(map[string]float64, len(domain.FeatureNames))
		for j, name := range domain.FeatureNames {
			features[name] = float64(i*10 + j)
		}
		points[i] = domain.SamplePoint{Lat: float64(i), Lon: float64(i), Features: features}
	}
	return points
}

func TestPredict_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.FeatureNames, req.FeatureNames)
		require.Len(t, req.Rows, 2)
		assert.InDelta(t, 0, req.Rows[0][0], 1e-9)
		assert.InDelta(t, 10, req.Rows[1][0], 1e-9)

		require.NoError(t, json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{42.5, 61.0}}))
	}))
	defer srv.Close()

	preds, err := newTestClient(srv.URL).Predict(context.Background(), samplePoints(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{42.5, 61.0}, preds)
}

func TestPredict_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{1}}))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), samplePoints(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 predictions for 3 points")
}

func TestPredict_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Predict(context.Background(), samplePoints(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}

func TestSupportsImportance_Available(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/importance", r.URL.Path)
		calls++
		require.NoError(t, json.NewEncoder(w).Encode(importanceResponse{
			Importance: map[string]float64{"vegetation_index": 0.4, "night_lights": 0.3},
		}))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assert.True(t, c.SupportsImportance())

	imp, err := c.FeatureImportance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.4, imp["vegetation_index"], 1e-9)
	assert.Equal(t, 1, calls, "importance probed once")
}

func TestSupportsImportance_NotExposed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assert.False(t, c.SupportsImportance())

	_, err := c.FeatureImportance(context.Background())
	require.Error(t, err)
}
