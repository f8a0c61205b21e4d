// Package googlegeo resolves coordinates to locality names with the Google
// Geocoding API.
package googlegeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

// componentPriority lists the address-component granularities accepted for a
// locality name. The first component carrying any of these types wins.
var componentPriority = []string{"neighborhood", "sublocality", "locality"}

// Client calls the Google Geocoding API. It returns the raw lookup outcome;
// memoization and the Unknown sentinel live in CachedResolver.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Google reverse-geocoding client.
func NewClient(key string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup reverse-geocodes a coordinate and returns the best locality-level
// name. An empty name with a nil error means the provider answered but had
// no usable component.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{
		"latlng": {fmt.Sprintf("%f,%f", lat, lon)},
		"key":    {c.key},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var geoResp response
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("decode response: %w", err)
	}

	if geoResp.Status != "OK" {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("geocoding failed: status %s", geoResp.Status)
	}

	for _, result := range geoResp.Results {
		for _, comp := range result.AddressComponents {
			if matchesPriority(comp.Types) {
				c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
				return comp.LongName, nil
			}
		}
	}

	c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	return "", nil
}

func matchesPriority(types []string) bool {
	for _, t := range types {
		for _, want := range componentPriority {
			if t == want {
				return true
			}
		}
	}
	return false
}

// Google Geocoding API response types.

type response struct {
	Status  string   `json:"status"`
	Results []result `json:"results"`
}

type result struct {
	AddressComponents []addressComponent `json:"address_components"`
}

type addressComponent struct {
	LongName string   `json:"long_name"`
	Types    []string `json:"types"`
}
