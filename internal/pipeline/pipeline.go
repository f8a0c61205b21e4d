// Package pipeline orchestrates one city analysis: extract features, score
// with the model, adjust for ambient weather, derive secondary metrics,
// resolve localities, rank, and assemble the response.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

// FeatureExtractor fetches the raw per-point feature table for a city.
type FeatureExtractor interface {
	Extract(ctx context.Context, city string) ([]domain.SamplePoint, error)
}

// Predictor scores feature vectors with the pretrained regression model.
type Predictor interface {
	Predict(ctx context.Context, points []domain.SamplePoint) ([]float64, error)
}

// ImportanceProvider is an optional Predictor capability: models that can
// report per-feature importances implement it. When absent (or when
// SupportsImportance is false) the engine falls back to the default driver
// list.
type ImportanceProvider interface {
	SupportsImportance() bool
	FeatureImportance(ctx context.Context) (map[string]float64, error)
}

// ResultPublisher forwards a finished analysis to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, result *domain.AnalysisResult) error
}

// Pipeline runs the per-request enrichment sequence. The geocode cache
// inside the resolver is the only state shared across requests.
type Pipeline struct {
	extractor          FeatureExtractor
	predictor          Predictor
	weather            domain.WeatherProvider
	resolver           domain.LocalityResolver
	publisher          ResultPublisher
	logger             *slog.Logger
	metrics            *observability.Metrics
	geocodeConcurrency int
	ready              atomic.Bool
}

// New creates a Pipeline. weather, resolver, and publisher may be nil; the
// pipeline then falls back to the baseline temperature, the Unknown
// locality, and no publishing respectively.
func New(
	extractor FeatureExtractor,
	predictor Predictor,
	weather domain.WeatherProvider,
	resolver domain.LocalityResolver,
	publisher ResultPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
	geocodeConcurrency int,
) *Pipeline {
	return &Pipeline{
		extractor:          extractor,
		predictor:          predictor,
		weather:            weather,
		resolver:           resolver,
		publisher:          publisher,
		logger:             logger,
		metrics:            metrics,
		geocodeConcurrency: geocodeConcurrency,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// analysis, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed an analysis yet")
	}
	return nil
}

// Analyze runs the full enrichment sequence for a city. Extraction or model
// failure fails the whole request; weather and geocoding failures degrade
// to documented fallbacks and never abort.
func (p *Pipeline) Analyze(ctx context.Context, city string) (*domain.AnalysisResult, error) {
	start := time.Now()

	points, err := p.extractor.Extract(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	predictions, err := p.predictor.Predict(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(predictions) != len(points) {
		return nil, fmt.Errorf("predict: got %d predictions for %d points", len(predictions), len(points))
	}
	for i := range points {
		points[i].Prediction = predictions[i]
	}

	points = domain.AdjustForAmbient(ctx, points, p.weather, p.logger)
	points = domain.Enrich(points, p.topDrivers(ctx))
	points = domain.ResolveLocalities(ctx, points, p.resolver, p.geocodeConcurrency, p.logger)

	result := &domain.AnalysisResult{
		Type:        "FeatureCollection",
		AnalysisID:  uuid.NewString(),
		City:        city,
		GeneratedAt: domain.Clock().Now().UTC(),
		Rankings:    domain.RankLocalities(points),
		Features:    domain.ToFeatureCollection(points),
	}

	p.metrics.PointsPerRequest.Observe(float64(len(points)))
	p.metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	p.publish(ctx, result)

	p.logger.Info("analysis complete",
		"city", city,
		"analysis_id", result.AnalysisID,
		"points", len(points),
		"duration", time.Since(start),
	)
	return result, nil
}

// AnalyzeEnriched runs the enrichment sequence and returns the raw enriched
// points, for callers that need weights rather than the GeoJSON payload
// (heatmap generation).
func (p *Pipeline) AnalyzeEnriched(ctx context.Context, city string) ([]domain.SamplePoint, error) {
	points, err := p.extractor.Extract(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	predictions, err := p.predictor.Predict(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(predictions) != len(points) {
		return nil, fmt.Errorf("predict: got %d predictions for %d points", len(predictions), len(points))
	}
	for i := range points {
		points[i].Prediction = predictions[i]
	}

	points = domain.AdjustForAmbient(ctx, points, p.weather, p.logger)
	return domain.Enrich(points, p.topDrivers(ctx)), nil
}

// topDrivers asks the model for feature importances when it supports them,
// falling back to the default driver list otherwise.
func (p *Pipeline) topDrivers(ctx context.Context) []string {
	ip, ok := p.predictor.(ImportanceProvider)
	if !ok || !ip.SupportsImportance() {
		return domain.DefaultTopDrivers
	}
	importance, err := ip.FeatureImportance(ctx)
	if err != nil || len(importance) == 0 {
		p.logger.Warn("feature importance unavailable, using default drivers", "error", err)
		return domain.DefaultTopDrivers
	}
	return domain.TopDrivers(importance)
}

// publish forwards the result to the configured publisher, best-effort.
func (p *Pipeline) publish(ctx context.Context, result *domain.AnalysisResult) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, result); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish analysis summary failed", "analysis_id", result.AnalysisID, "error", err)
		return
	}
	p.metrics.ResultsPublished.Inc()
}
