// Package openmeteo looks up current ambient temperature from the
// open-meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

// Client implements domain.WeatherProvider. Failures are returned to the
// caller, which substitutes the documented fallback temperature.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

// NewClient creates an open-meteo client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
	}
}

// CurrentTemperature returns the current 2 m air temperature in Celsius.
func (c *Client) CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%f", lat)},
		"longitude": {fmt.Sprintf("%f", lon)},
		"current":   {"temperature_2m"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("weather API error: status %d: %s", resp.StatusCode, body)
	}

	var meteoResp response
	if err := json.NewDecoder(resp.Body).Decode(&meteoResp); err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if meteoResp.Current == nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("weather response has no current block")
	}

	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return meteoResp.Current.Temperature2M, nil
}

// open-meteo API response types.

type response struct {
	Current *current `json:"current"`
}

type current struct {
	Temperature2M float64 `json:"temperature_2m"`
}
