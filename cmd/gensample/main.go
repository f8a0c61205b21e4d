// Command gensample generates deterministic synthetic fixtures for the
// analysis test suites: a raw feature table shaped like the extractor
// response, and the enriched analysis produced from it by the actual domain
// package, so fixture output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/gensample \
//	  -city Pune -points 50 -seed 42 \
//	  -rows-out data/mock/feature_rows.json \
//	  -analysis-out data/mock/analysis.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/heatscape/uhi-analysis-service/internal/domain"
)

// Pune city centroid; points scatter around it.
const (
	centerLat = 18.5204
	centerLon = 73.8567
	spread    = 0.15
)

// localityNames label synthetic points by longitude band, standing in for a
// live reverse geocoder.
var localityNames = []string{
	"Aundh", "Baner", "Kothrud", "Shivajinagar", "Hadapsar",
	"Kharadi", "Wakad", "Hinjewadi", "Katraj", "Yerwada",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	city := flag.String("city", "Pune", "city name stamped on the analysis")
	points := flag.Int("points", 50, "number of sample points to generate")
	seed := flag.Int64("seed", 42, "random seed for reproducible output")
	rowsOut := flag.String("rows-out", "", "output path for the raw feature-table JSON fixture")
	analysisOut := flag.String("analysis-out", "", "output path for the enriched analysis JSON fixture")
	flag.Parse()

	if *rowsOut == "" || *analysisOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -rows-out, -analysis-out")
	}

	// Fixed clock for reproducible timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.August, 1, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	rng := rand.New(rand.NewSource(*seed))
	rows := generateRows(rng, *points)

	if err := writeJSON(*rowsOut, map[string]any{"rows": rows}); err != nil {
		return fmt.Errorf("writing feature-table fixture: %w", err)
	}
	log.Printf("wrote feature-table fixture: %s (%d rows)", *rowsOut, len(rows))

	result, err := enrich(rng, rows, *city)
	if err != nil {
		return fmt.Errorf("enriching rows: %w", err)
	}

	if err := writeJSON(*analysisOut, result); err != nil {
		return fmt.Errorf("writing analysis fixture: %w", err)
	}
	log.Printf("wrote analysis fixture: %s", *analysisOut)

	printStats(result)
	return nil
}

// generateRows builds a plausible feature table: dense built-up cells carry
// low vegetation and bright night lights, green cells the opposite.
func generateRows(rng *rand.Rand, n int) []domain.FeatureRow {
	rows := make([]domain.FeatureRow, 0, n)
	for i := 0; i < n; i++ {
		builtup := rng.Float64()
		veg := (1 - builtup) * (0.3 + 0.4*rng.Float64())

		row := domain.FeatureRow{
			"latitude":                       centerLat + (rng.Float64()-0.5)*2*spread,
			"longitude":                      centerLon + (rng.Float64()-0.5)*2*spread,
			"vegetation_index":               round4(veg),
			"builtup_index":                  round4(builtup),
			"enhanced_vegetation_index":      round4(veg * 0.9),
			"soil_adjusted_vegetation_index": round4(veg * 0.8),
			"albedo":                         round4(0.1 + 0.2*rng.Float64()),
			"water_index":                    round4(0.3 * rng.Float64()),
			"builtup_intensity":              round4(builtup * (0.6 + 0.4*rng.Float64())),
			"elevation":                      round4(540 + 60*rng.Float64()),
			"slope":                          round4(5 * rng.Float64()),
			"night_lights":                   round4(builtup * 60 * rng.Float64()),
		}
		rows = append(rows, row)
	}
	return rows
}

// enrich runs the actual domain sequence on the synthetic rows. Predictions
// follow the feature structure so classifications span the whole range.
func enrich(rng *rand.Rand, rows []domain.FeatureRow, city string) (*domain.AnalysisResult, error) {
	points, err := domain.ParseFeatureRows(rows)
	if err != nil {
		return nil, err
	}

	for i := range points {
		p := &points[i]
		p.Prediction = clampF(20 +
			p.Features["builtup_index"]*60 -
			p.Features["vegetation_index"]*30 +
			rng.Float64()*10)
	}

	// No live weather in fixture generation: the fallback temperature keeps
	// risk equal to the prediction.
	points = domain.AdjustForAmbient(nil, points, nil, nil)
	points = domain.Enrich(points, domain.DefaultTopDrivers)

	for i := range points {
		band := int((points[i].Lon - (centerLon - spread)) / (2 * spread / float64(len(localityNames))))
		if band < 0 {
			band = 0
		}
		if band >= len(localityNames) {
			band = len(localityNames) - 1
		}
		points[i].Locality = localityNames[band]
	}

	return &domain.AnalysisResult{
		Type:        "FeatureCollection",
		AnalysisID:  uuid.NewSHA1(uuid.NameSpaceOID, []byte(city)).String(),
		City:        city,
		GeneratedAt: domain.Clock().Now().UTC(),
		Rankings:    domain.RankLocalities(points),
		Features:    domain.ToFeatureCollection(points),
	}, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(result *domain.AnalysisResult) {
	statusCounts := map[string]int{}
	var earlyWarnings int
	var minRisk, maxRisk float64
	for i, f := range result.Features {
		risk, _ := f.Properties["risk"].(float64)
		if i == 0 || risk < minRisk {
			minRisk = risk
		}
		if risk > maxRisk {
			maxRisk = risk
		}
		if status, ok := f.Properties["livability_status"].(string); ok {
			statusCounts[status]++
		}
		if ew, ok := f.Properties["early_warning"].(bool); ok && ew {
			earlyWarnings++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total points: %d\n", len(result.Features))
	fmt.Printf("Risk range: %.2f - %.2f\n", minRisk, maxRisk)
	fmt.Printf("By status: highly=%d, moderately=%d, stressed=%d, critical=%d\n",
		statusCounts[domain.StatusHighlyLivable], statusCounts[domain.StatusModeratelyLivable],
		statusCounts[domain.StatusHeatStressed], statusCounts[domain.StatusCritical])
	fmt.Printf("Early warnings: %d\n", earlyWarnings)

	fmt.Println("\nMost livable:")
	for _, s := range result.Rankings.MostLivable {
		fmt.Printf("  %-14s livability=%.2f risk=%.2f\n", s.Locality, s.LivabilityIndex, s.Risk)
	}
	fmt.Println("Least livable:")
	for _, s := range result.Rankings.LeastLivable {
		fmt.Printf("  %-14s livability=%.2f risk=%.2f\n", s.Locality, s.LivabilityIndex, s.Risk)
	}
}

func round4(v float64) float64 {
	return float64(int(v*10000)) / 10000
}

func clampF(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
