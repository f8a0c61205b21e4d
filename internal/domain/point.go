package domain

import (
	"time"
)

// FeatureNames lists the required feature columns, in model input order.
var FeatureNames = []string{
	"vegetation_index",
	"builtup_index",
	"enhanced_vegetation_index",
	"soil_adjusted_vegetation_index",
	"albedo",
	"water_index",
	"builtup_intensity",
	"elevation",
	"slope",
	"night_lights",
}

// UnknownLocality is the sentinel for coordinates that could not be resolved
// to a human-readable place name.
const UnknownLocality = "Unknown"

// SamplePoint is one observed location. It is constructed from the
// extraction service output, enriched in place through the pipeline, and
// discarded after the response is serialized.
type SamplePoint struct {
	Lat      float64
	Lon      float64
	Features map[string]float64

	// Model output.
	Prediction float64

	// Ambient adjustment (set by AdjustForAmbient).
	Risk               float64
	AmbientTempCelsius float64
	AmbientLivability  float64

	// Derived metrics (set by Enrich).
	GreenDeficit      float64
	CoolingPotential  float64
	PeopleAtRisk      int
	FutureRisk3Months float64
	EarlyWarning      bool
	ResilienceScore   float64
	TopDrivers        []string
	MitigationActions []string
	LivabilityStatus  string
	HealthSummary     string
	LivabilityIndex   float64

	// Resolved place name (set by ResolveLocalities).
	Locality string
}

// FeatureVector returns the point's features in FeatureNames order.
func (p *SamplePoint) FeatureVector() []float64 {
	vec := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		vec[i] = p.Features[name]
	}
	return vec
}

// LocalitySummary aggregates all sample points sharing a resolved locality.
type LocalitySummary struct {
	Locality        string  `json:"locality"`
	Risk            float64 `json:"risk"`
	ResilienceScore float64 `json:"resilience_score"`
	GreenDeficit    float64 `json:"green_deficit"`
	LivabilityIndex float64 `json:"livability_index"`
}

// Rankings holds the top and bottom localities by mean livability index.
type Rankings struct {
	MostLivable  []LocalitySummary `json:"most_livable"`
	LeastLivable []LocalitySummary `json:"least_livable"`
}

// AnalysisResult is the complete payload for one city analysis.
type AnalysisResult struct {
	Type        string    `json:"type"`
	AnalysisID  string    `json:"analysis_id"`
	City        string    `json:"city"`
	GeneratedAt time.Time `json:"generated_at"`
	Rankings    Rankings  `json:"rankings"`
	Features    []Feature `json:"features"`
}
