// Command validate performs integrity checks on a saved analysis JSON
// payload: structural shape, derived-metric consistency against the actual
// domain package, classification agreement, and ranking order.
//
// Usage:
//
//	go run ./cmd/validate -analysis data/mock/analysis.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	analysisPath := flag.String("analysis", "", "path to a saved analysis JSON payload")
	flag.Parse()

	if *analysisPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*analysisPath); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Analysis Integrity Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read analysis: %v\n", err)
		return 1
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse analysis: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(&result),
		validateDerivedMetrics(&result),
		validateClassification(&result),
		validateRankings(&result),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-44s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Points: %d, localities ranked: %d most / %d least\n",
		len(result.Features), len(result.Rankings.MostLivable), len(result.Rankings.LeastLivable))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Structure ──

func validateStructure(result *domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 1: Structure (GeoJSON shape)"}

	if result.Type != "FeatureCollection" {
		p.errorf("type is %q, expected FeatureCollection", result.Type)
	}
	if result.AnalysisID == "" {
		p.errorf("analysis_id is empty")
	}
	if result.City == "" {
		p.errorf("city is empty")
	}
	if result.GeneratedAt.IsZero() {
		p.errorf("generated_at is zero")
	}
	if len(result.Features) == 0 {
		p.errorf("features is empty")
	}

	for i, f := range result.Features {
		if f.Type != "Feature" {
			p.errorf("feature %d: type is %q", i, f.Type)
		}
		if f.Geometry.Type != "Point" {
			p.errorf("feature %d: geometry type is %q", i, f.Geometry.Type)
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			p.errorf("feature %d: coordinates [%g, %g] out of range", i, lon, lat)
		}
		if cat, _ := f.Properties["category"].(string); cat != "all_points" {
			p.errorf("feature %d: category is %q", i, cat)
		}
		for _, name := range domain.FeatureNames {
			if _, ok := f.Properties[name].(float64); !ok {
				p.errorf("feature %d: missing feature column %q", i, name)
			}
		}
		if loc, _ := f.Properties["locality"].(string); loc == "" {
			p.errorf("feature %d: locality is empty", i)
		}
	}
	return p
}

// ── Phase 2: Derived Metrics ──
// Recomputes every derived value from the stored inputs and compares.

func validateDerivedMetrics(result *domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 2: Derived Metrics (recomputation)"}

	for i, f := range result.Features {
		props := f.Properties
		risk := num(props, "risk")

		if risk < 0 || risk > 100 {
			p.errorf("feature %d: risk %g out of [0, 100]", i, risk)
		}
		if got, want := num(props, "resilience_score"), round2(100-risk); !floatEq(got, want) {
			p.errorf("feature %d: resilience_score %g, expected %g", i, got, want)
		}

		deficit := num(props, "green_deficit")
		if got, want := deficit, round2(0.6-num(props, "vegetation_index")); !floatEq(got, want) {
			p.errorf("feature %d: green_deficit %g, expected %g", i, got, want)
		}
		if got, want := num(props, "cooling_potential"), round2(deficit*4); !floatEq(got, want) {
			p.errorf("feature %d: cooling_potential %g, expected %g", i, got, want)
		}

		future := num(props, "future_risk_3months")
		if want := round2(risk * 1.05); !floatEq(future, want) {
			p.errorf("feature %d: future_risk_3months %g, expected %g", i, future, want)
		}
		if ew, _ := props["early_warning"].(bool); ew != (future > 80) {
			p.errorf("feature %d: early_warning %v inconsistent with future risk %g", i, ew, future)
		}

		if got := num(props, "people_at_risk"); got != float64(int(domain.DefaultPopulation*domain.AtRiskShare)) {
			p.errorf("feature %d: people_at_risk %g, expected %d", i, got, int(domain.DefaultPopulation*domain.AtRiskShare))
		}

		resilience := num(props, "resilience_score")
		wantIndex := (100-risk)*0.5 + resilience*0.3 + (1-deficit)*100*0.2
		if got := num(props, "livability_index"); !floatEq(got, wantIndex) {
			p.errorf("feature %d: livability_index %g, expected %g", i, got, wantIndex)
		}
	}
	return p
}

// ── Phase 3: Classification ──
// Status, health summary, and mitigation actions must agree with the rules.

func validateClassification(result *domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 3: Classification (status rules)"}

	for i, f := range result.Features {
		props := f.Properties
		risk := num(props, "risk")
		resilience := num(props, "resilience_score")
		deficit := num(props, "green_deficit")

		status, _ := props["livability_status"].(string)
		if want := domain.ClassifyLivability(risk, resilience, deficit); status != want {
			p.errorf("feature %d: status %q, rules give %q", i, status, want)
		}

		summary, _ := props["health_summary"].(string)
		if want := domain.HealthSummary(status); summary != want {
			p.errorf("feature %d: health summary does not match status %q", i, status)
		}

		drivers := strSlice(props["top_drivers"])
		if len(drivers) == 0 {
			p.errorf("feature %d: top_drivers is empty", i)
			continue
		}
		actions := strSlice(props["mitigation_actions"])
		want := domain.MitigationActions(drivers, risk)
		if !sameSet(actions, want) {
			p.errorf("feature %d: mitigation actions %v, rules give %v", i, actions, want)
		}
	}
	return p
}

// ── Phase 4: Rankings ──
// Ranking entries must be ordered, capped at ten, and match the per-point
// group means.

func validateRankings(result *domain.AnalysisResult) *phase {
	p := &phase{name: "Phase 4: Rankings (order and means)"}

	most, least := result.Rankings.MostLivable, result.Rankings.LeastLivable
	if len(most) > 10 {
		p.errorf("most_livable has %d entries, cap is 10", len(most))
	}
	if len(least) > 10 {
		p.errorf("least_livable has %d entries, cap is 10", len(least))
	}
	if !sort.SliceIsSorted(most, func(i, j int) bool { return most[i].LivabilityIndex > most[j].LivabilityIndex }) {
		p.errorf("most_livable is not in descending livability order")
	}
	if !sort.SliceIsSorted(least, func(i, j int) bool { return least[i].LivabilityIndex < least[j].LivabilityIndex }) {
		p.errorf("least_livable is not in ascending livability order")
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, f := range result.Features {
		loc, _ := f.Properties["locality"].(string)
		sums[loc] += num(f.Properties, "livability_index")
		counts[loc]++
	}
	for _, s := range append(append([]domain.LocalitySummary{}, most...), least...) {
		n := counts[s.Locality]
		if n == 0 {
			p.errorf("ranked locality %q has no points", s.Locality)
			continue
		}
		if want := sums[s.Locality] / float64(n); !floatEq(s.LivabilityIndex, want) {
			p.errorf("locality %q: ranked livability %g, point mean %g", s.Locality, s.LivabilityIndex, want)
		}
	}
	return p
}

// ── Helpers ──

func num(props map[string]any, key string) float64 {
	v, _ := props[key].(float64)
	return v
}

func strSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]bool{}
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			return false
		}
	}
	return true
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
