package domain

import (
	"math"
	"sort"
)

// Derivation constants.
const (
	// targetVegetation is the vegetation_index level the green deficit is
	// measured against.
	targetVegetation = 0.6

	coolingScale = 4.0

	// DefaultPopulation and AtRiskShare feed people_at_risk. The population
	// input is a hardcoded default rather than a per-locality figure, so
	// every point reports the same 3000; flagged to the product owner as a
	// placeholder, kept for output compatibility.
	DefaultPopulation = 10000
	AtRiskShare       = 0.3

	futureGrowth          = 1.05
	earlyWarningThreshold = 80.0
	alertRiskThreshold    = 70.0
)

// DefaultTopDrivers is used when the model exposes no feature-importance
// data.
var DefaultTopDrivers = []string{"vegetation_index", "builtup_index", "land_surface_temp"}

// Driver groups for mitigation-action selection.
var (
	greeningDrivers   = []string{"vegetation_index", "enhanced_vegetation_index", "soil_adjusted_vegetation_index"}
	reflectiveDrivers = []string{"builtup_index", "land_cover", "albedo"}
	shadingDrivers    = []string{"land_surface_temp", "night_lights"}
)

var (
	greeningActions = []string{
		"Increase roadside tree plantation",
		"Create pocket parks and green buffers",
		"Vertical gardening on buildings",
	}
	reflectiveActions = []string{
		"Adopt cool roof technology",
		"Use reflective pavement materials",
		"Limit new concrete development",
	}
	shelterActions = []string{
		"Establish temporary cooling shelters",
		"Install drinking water kiosks",
		"Reschedule outdoor labor hours",
	}
	shadingActions = []string{
		"Build shaded pedestrian corridors",
		"Deploy misting stations in markets",
		"Increase urban water bodies",
	}
	alertActions = []string{
		"Issue heat-wave alert to citizens",
		"Activate emergency heat response teams",
	}
)

// Livability status labels, in classification order.
const (
	StatusHighlyLivable     = "Highly Livable"
	StatusModeratelyLivable = "Moderately Livable"
	StatusHeatStressed      = "Heat-Stressed"
	StatusCritical          = "Critical - Immediate Intervention Needed"
)

var healthSummaries = map[string]string{
	StatusHighlyLivable:     "This locality currently maintains a healthy balance between built environment and natural cooling.",
	StatusModeratelyLivable: "Thermal comfort is acceptable but vegetation loss and urban density are beginning to affect living conditions.",
	StatusHeatStressed:      "This area is experiencing significant urban heat stress due to reduced greenery and increased surface temperature.",
	StatusCritical:          "Severe environmental stress detected. Immediate mitigation measures are strongly recommended.",
}

// TopDrivers returns the top-3 feature names by model importance, in
// descending order. Ties keep the declared feature order (stable sort).
func TopDrivers(importance map[string]float64) []string {
	names := make([]string, len(FeatureNames))
	copy(names, FeatureNames)
	sort.SliceStable(names, func(i, j int) bool {
		return importance[names[i]] > importance[names[j]]
	})
	if len(names) > 3 {
		names = names[:3]
	}
	return names
}

// Enrich applies the derived-metrics engine to every point. Points must
// already carry a prediction and an ambient-adjusted risk; the engine never
// fabricates risk on its own. topDrivers is shared across the whole batch.
//
// Enrich is a pure function of its inputs: re-running it on already
// enriched points produces identical output.
func Enrich(points []SamplePoint, topDrivers []string) []SamplePoint {
	for i := range points {
		p := &points[i]
		p.GreenDeficit = round2(targetVegetation - p.Features["vegetation_index"])
		p.CoolingPotential = round2(p.GreenDeficit * coolingScale)
		p.PeopleAtRisk = int(DefaultPopulation * AtRiskShare)
		p.FutureRisk3Months = round2(p.Risk * futureGrowth)
		p.EarlyWarning = p.FutureRisk3Months > earlyWarningThreshold
		p.ResilienceScore = round2(100 - p.Risk)
		p.TopDrivers = topDrivers
		p.MitigationActions = MitigationActions(topDrivers, p.Risk)
		p.LivabilityStatus = ClassifyLivability(p.Risk, p.ResilienceScore, p.GreenDeficit)
		p.HealthSummary = healthSummaries[p.LivabilityStatus]
		p.LivabilityIndex = (100-p.Risk)*0.5 +
			p.ResilienceScore*0.3 +
			(1-p.GreenDeficit)*100*0.2
	}
	return points
}

// MitigationActions selects actions from the rule set: every matching rule
// contributes, and duplicates are dropped while keeping first-insertion
// order (the contract guarantees no particular order).
func MitigationActions(drivers []string, risk float64) []string {
	var actions []string
	if containsAny(drivers, greeningDrivers) {
		actions = append(actions, greeningActions...)
	}
	if containsAny(drivers, reflectiveDrivers) {
		actions = append(actions, reflectiveActions...)
	}
	if containsAny(drivers, []string{"population"}) {
		actions = append(actions, shelterActions...)
	}
	if containsAny(drivers, shadingDrivers) {
		actions = append(actions, shadingActions...)
	}
	if risk > alertRiskThreshold {
		actions = append(actions, alertActions...)
	}
	return dedupe(actions)
}

// ClassifyLivability evaluates the status rules in order; first match wins.
func ClassifyLivability(risk, resilience, greenDeficit float64) string {
	switch {
	case risk < 40 && resilience > 60 && greenDeficit < 0.2:
		return StatusHighlyLivable
	case risk < 60 && resilience > 45:
		return StatusModeratelyLivable
	case risk < 75:
		return StatusHeatStressed
	default:
		return StatusCritical
	}
}

// HealthSummary returns the fixed text for a livability status.
func HealthSummary(status string) string {
	return healthSummaries[status]
}

func containsAny(haystack, needles []string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if h == n {
				return true
			}
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
