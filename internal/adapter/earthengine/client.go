// Package earthengine fetches per-point satellite feature tables from the
// extraction service (a thin proxy over the Earth Engine sampling job).
package earthengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

// compositeWindow is how far back the satellite composite reaches.
const compositeWindow = 60 * 24 * time.Hour

// Client implements the pipeline's FeatureExtractor against the extraction
// service HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an extraction-service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// Extract samples the feature table for a city over the trailing 60-day
// composite window and validates it into sample points.
func (c *Client) Extract(ctx context.Context, city string) ([]domain.SamplePoint, error) {
	end := domain.Clock().Now().UTC()
	start := end.Add(-compositeWindow)

	params := url.Values{
		"city":  {city},
		"start": {start.Format("2006-01-02")},
		"end":   {end.Format("2006-01-02")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extract?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction service error: status %d: %s", resp.StatusCode, body)
	}

	var table response
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode feature table: %w", err)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("extraction returned no sample points for %q", city)
	}

	points, err := domain.ParseFeatureRows(table.Rows)
	if err != nil {
		return nil, fmt.Errorf("feature table for %q: %w", city, err)
	}
	return points, nil
}

// Extraction service response type: one flat numeric map per sample point.
type response struct {
	Rows []domain.FeatureRow `json:"rows"`
}
