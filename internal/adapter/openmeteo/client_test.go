package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting())
}

func TestCurrentTemperature_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "temperature_2m", r.URL.Query().Get("current"))
		assert.NotEmpty(t, r.URL.Query().Get("latitude"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":34.2}}`))
	}))
	defer srv.Close()

	temp, err := newTestClient(srv.URL).CurrentTemperature(context.Background(), 18.52, 73.85)
	require.NoError(t, err)
	assert.InDelta(t, 34.2, temp, 1e-9)
}

func TestCurrentTemperature_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CurrentTemperature(context.Background(), 18.52, 73.85)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestCurrentTemperature_MissingCurrentBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CurrentTemperature(context.Background(), 18.52, 73.85)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no current block")
}
