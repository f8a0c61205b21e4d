package domain

// GeoJSON assembly for the /analyze response. Latitude and longitude move
// into the geometry; everything else becomes feature properties.

// Geometry is a GeoJSON point geometry with [lon, lat] coordinates.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Feature is a GeoJSON feature wrapping one enriched sample point.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// pointCategory tags every feature in an analysis; the original dataset had
// a single category.
const pointCategory = "all_points"

// ToFeatureCollection converts enriched points into GeoJSON features.
func ToFeatureCollection(points []SamplePoint) []Feature {
	features := make([]Feature, 0, len(points))
	for i := range points {
		p := &points[i]

		props := make(map[string]any, len(p.Features)+18)
		for name, v := range p.Features {
			props[name] = v
		}
		props["prediction"] = p.Prediction
		props["risk"] = p.Risk
		props["ambient_temp_celsius"] = p.AmbientTempCelsius
		props["livability"] = p.AmbientLivability
		props["green_deficit"] = p.GreenDeficit
		props["cooling_potential"] = p.CoolingPotential
		props["people_at_risk"] = p.PeopleAtRisk
		props["future_risk_3months"] = p.FutureRisk3Months
		props["early_warning"] = p.EarlyWarning
		props["resilience_score"] = p.ResilienceScore
		props["top_drivers"] = p.TopDrivers
		props["mitigation_actions"] = p.MitigationActions
		props["livability_status"] = p.LivabilityStatus
		props["health_summary"] = p.HealthSummary
		props["livability_index"] = p.LivabilityIndex
		props["locality"] = p.Locality
		props["category"] = pointCategory

		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Lon, p.Lat},
			},
			Properties: props,
		})
	}
	return features
}
