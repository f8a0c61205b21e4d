// Package model calls the pretrained regression model served as a small
// prediction service.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

// Client implements the pipeline's Predictor. Feature importance is an
// optional capability of the serving layer: it is probed once, lazily, and
// SupportsImportance reports whether it is available.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger

	importanceOnce sync.Once
	importance     map[string]float64
	importanceErr  error
}

// NewClient creates a model-service client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Predict returns one predicted heat value per point, in input order.
func (c *Client) Predict(ctx context.Context, points []domain.SamplePoint) ([]float64, error) {
	rows := make([][]float64, len(points))
	for i := range points {
		rows[i] = points[i].FeatureVector()
	}

	body, err := json.Marshal(predictRequest{FeatureNames: domain.FeatureNames, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predict request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model service error: status %d: %s", resp.StatusCode, respBody)
	}

	var predResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predResp); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}
	if len(predResp.Predictions) != len(points) {
		return nil, fmt.Errorf("model returned %d predictions for %d points", len(predResp.Predictions), len(points))
	}
	return predResp.Predictions, nil
}

// SupportsImportance reports whether the serving layer exposes feature
// importances. The first call probes the service; the result is cached.
func (c *Client) SupportsImportance() bool {
	c.loadImportance()
	return c.importanceErr == nil && len(c.importance) > 0
}

// FeatureImportance returns per-feature importance weights.
func (c *Client) FeatureImportance(_ context.Context) (map[string]float64, error) {
	c.loadImportance()
	return c.importance, c.importanceErr
}

func (c *Client) loadImportance() {
	c.importanceOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/importance", nil)
		if err != nil {
			c.importanceErr = fmt.Errorf("create request: %w", err)
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.importanceErr = fmt.Errorf("importance request: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			c.importanceErr = fmt.Errorf("model does not expose feature importance")
			return
		}
		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			c.importanceErr = fmt.Errorf("model service error: status %d: %s", resp.StatusCode, respBody)
			return
		}

		var impResp importanceResponse
		if err := json.NewDecoder(resp.Body).Decode(&impResp); err != nil {
			c.importanceErr = fmt.Errorf("decode importance: %w", err)
			return
		}
		c.importance = impResp.Importance
	})
	if c.importanceErr != nil {
		c.logger.Debug("feature importance unavailable", "error", c.importanceErr)
	}
}

// Model service wire types.

type predictRequest struct {
	FeatureNames []string    `json:"feature_names"`
	Rows         [][]float64 `json:"rows"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

type importanceResponse struct {
	Importance map[string]float64 `json:"importance"`
}
