package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
	"github.com/heatscape/uhi-analysis-service/internal/observability"
)

type fakeExtractor struct {
	points []domain.SamplePoint
	err    error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) ([]domain.SamplePoint, error) {
	return f.points, f.err
}

type fakePredictor struct {
	predictions []float64
	err         error
}

func (f *fakePredictor) Predict(_ context.Context, _ []domain.SamplePoint) ([]float64, error) {
	return f.predictions, f.err
}

// importancePredictor additionally satisfies ImportanceProvider.
type importancePredictor struct {
	fakePredictor
	importance map[string]float64
}

func (f *importancePredictor) SupportsImportance() bool { return f.importance != nil }

func (f *importancePredictor) FeatureImportance(_ context.Context) (map[string]float64, error) {
	return f.importance, nil
}

type fakeWeather struct {
	temp float64
	err  error
}

func (f *fakeWeather) CurrentTemperature(_ context.Context, _, _ float64) (float64, error) {
	return f.temp, f.err
}

// fakeResolver assigns localities by latitude band.
type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, lat, _ float64) string {
	if lat < 18.6 {
		return "Hadapsar"
	}
	return "Aundh"
}

type fakePublisher struct {
	published []*domain.AnalysisResult
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, result *domain.AnalysisResult) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, result)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func point(lat, lon, veg, builtup, night float64) domain.SamplePoint {
	return domain.SamplePoint{
		Lat: lat,
		Lon: lon,
		Features: map[string]float64{
			"vegetation_index":               veg,
			"builtup_index":                  builtup,
			"enhanced_vegetation_index":      veg * 0.9,
			"soil_adjusted_vegetation_index": veg * 0.8,
			"albedo":                         0.2,
			"water_index":                    0.05,
			"builtup_intensity":              builtup * 0.7,
			"elevation":                      560,
			"slope":                          2,
			"night_lights":                   night,
		},
	}
}

func newPipeline(ext FeatureExtractor, pred Predictor, weather domain.WeatherProvider, resolver domain.LocalityResolver, pub ResultPublisher) *Pipeline {
	return New(ext, pred, weather, resolver, pub, discardLogger(), observability.NewMetricsForTesting(), 10)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	defer domain.SetClock(clockwork.NewRealClock())

	// Ambient temp 32C adds (32-30)*1.5 = 3.0 to every prediction.
	ext := &fakeExtractor{points: []domain.SamplePoint{
		point(18.7, 73.8, 0.5, 0.2, 10), // risk 40
		point(18.8, 73.9, 0.2, 0.6, 40), // risk 72
		point(18.5, 73.9, 0.1, 0.8, 55), // risk 88
	}}
	pred := &importancePredictor{
		fakePredictor: fakePredictor{predictions: []float64{37, 69, 85}},
		importance: map[string]float64{
			"vegetation_index": 0.5,
			"builtup_index":    0.3,
			"night_lights":     0.2,
		},
	}
	pub := &fakePublisher{}

	p := newPipeline(ext, pred, &fakeWeather{temp: 32}, fakeResolver{}, pub)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", result.Type)
	assert.Equal(t, "Pune", result.City)
	assert.NotEmpty(t, result.AnalysisID)
	assert.Equal(t, fixed, result.GeneratedAt)
	require.Len(t, result.Features, 3)

	first := result.Features[0].Properties
	assert.InDelta(t, 40.0, first["risk"], 1e-9)
	assert.InDelta(t, 60.0, first["resilience_score"], 1e-9)
	assert.InDelta(t, 0.1, first["green_deficit"], 1e-9)
	assert.InDelta(t, 0.4, first["cooling_potential"], 1e-9)
	assert.InDelta(t, 42.0, first["future_risk_3months"], 1e-9)
	assert.InDelta(t, 66.0, first["livability_index"], 1e-9)
	assert.Equal(t, false, first["early_warning"])
	assert.Equal(t, domain.StatusModeratelyLivable, first["livability_status"])
	assert.Equal(t, "Aundh", first["locality"])
	assert.Equal(t, []string{"vegetation_index", "builtup_index", "night_lights"}, first["top_drivers"])

	second := result.Features[1].Properties
	assert.InDelta(t, 72.0, second["risk"], 1e-9)
	assert.Equal(t, domain.StatusHeatStressed, second["livability_status"])
	assert.Contains(t, second["mitigation_actions"], "Issue heat-wave alert to citizens")

	third := result.Features[2].Properties
	assert.InDelta(t, 88.0, third["risk"], 1e-9)
	assert.Equal(t, true, third["early_warning"])
	assert.Equal(t, domain.StatusCritical, third["livability_status"])
	assert.Equal(t, "Hadapsar", third["locality"])

	// Aundh mean livability (66+34.4)/2 = 50.2, Hadapsar 19.6.
	require.Len(t, result.Rankings.MostLivable, 2)
	assert.Equal(t, "Aundh", result.Rankings.MostLivable[0].Locality)
	assert.InDelta(t, 50.2, result.Rankings.MostLivable[0].LivabilityIndex, 1e-9)
	assert.Equal(t, "Hadapsar", result.Rankings.LeastLivable[0].Locality)
	assert.InDelta(t, 19.6, result.Rankings.LeastLivable[0].LivabilityIndex, 1e-9)

	require.Len(t, pub.published, 1)
	assert.Equal(t, result.AnalysisID, pub.published[0].AnalysisID)
}

func TestAnalyze_ExtractorFailureAborts(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{err: errors.New("earth engine down")},
		&fakePredictor{},
		nil, nil, nil,
	)
	_, err := p.Analyze(context.Background(), "Pune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract features")
}

func TestAnalyze_PredictorFailureAborts(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{err: errors.New("model not loaded")},
		nil, nil, nil,
	)
	_, err := p.Analyze(context.Background(), "Pune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predict")
}

func TestAnalyze_PredictionCountMismatch(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{1, 2}},
		nil, nil, nil,
	)
	_, err := p.Analyze(context.Background(), "Pune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 predictions for 1 points")
}

func TestAnalyze_WeatherFailureUsesFallback(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{50}},
		&fakeWeather{err: errors.New("open-meteo timeout")},
		nil, nil,
	)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)

	props := result.Features[0].Properties
	assert.InDelta(t, 50.0, props["risk"], 1e-9, "fallback 30C leaves the prediction unchanged")
	assert.InDelta(t, 30.0, props["ambient_temp_celsius"], 1e-9)
}

func TestAnalyze_NoImportanceCapabilityUsesDefaults(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{50}},
		nil, nil, nil,
	)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopDrivers, result.Features[0].Properties["top_drivers"])
}

func TestAnalyze_ImportanceProviderWithoutData(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&importancePredictor{fakePredictor: fakePredictor{predictions: []float64{50}}},
		nil, nil, nil,
	)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopDrivers, result.Features[0].Properties["top_drivers"])
}

func TestAnalyze_NilResolverMarksUnknown(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{50}},
		nil, nil, nil,
	)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownLocality, result.Features[0].Properties["locality"])
}

func TestAnalyze_PublishFailureDoesNotFailRequest(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{50}},
		nil, nil,
		&fakePublisher{err: errors.New("broker unreachable")},
	)
	result, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestCheckReadiness(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{point(18.5, 73.8, 0.3, 0.4, 20)}},
		&fakePredictor{predictions: []float64{50}},
		nil, nil, nil,
	)
	require.Error(t, p.CheckReadiness(context.Background()))

	_, err := p.Analyze(context.Background(), "Pune")
	require.NoError(t, err)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestAnalyzeEnriched_ReturnsPointsForHeatmaps(t *testing.T) {
	p := newPipeline(
		&fakeExtractor{points: []domain.SamplePoint{
			point(18.5, 73.8, 0.3, 0.4, 20),
			point(18.6, 73.9, 0.2, 0.6, 30),
		}},
		&fakePredictor{predictions: []float64{40, 80}},
		&fakeWeather{temp: 30},
		nil, nil,
	)
	points, err := p.AnalyzeEnriched(context.Background(), "Pune")
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 40.0, points[0].Risk, 1e-9)
	assert.InDelta(t, 84.0, points[1].FutureRisk3Months, 1e-9)
	assert.NotEmpty(t, points[0].LivabilityStatus)
}
