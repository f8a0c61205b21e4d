package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFeatureCollection_MovesCoordinatesIntoGeometry(t *testing.T) {
	p := testPoint(50)
	p = Enrich([]SamplePoint{p}, DefaultTopDrivers)[0]
	p.Locality = "Kothrud"
	p.AmbientTempCelsius = 31.5

	features := ToFeatureCollection([]SamplePoint{p})
	require.Len(t, features, 1)
	f := features[0]

	assert.Equal(t, "Feature", f.Type)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.InDelta(t, 73.85, f.Geometry.Coordinates[0], 1e-9, "lon first")
	assert.InDelta(t, 18.52, f.Geometry.Coordinates[1], 1e-9)
	assert.NotContains(t, f.Properties, "lat")
	assert.NotContains(t, f.Properties, "lon")

	assert.Equal(t, "all_points", f.Properties["category"])
	assert.Equal(t, "Kothrud", f.Properties["locality"])
	assert.Equal(t, 3000, f.Properties["people_at_risk"])
	assert.InDelta(t, 0.35, f.Properties["vegetation_index"].(float64), 1e-9)
	assert.InDelta(t, 50.0, f.Properties["risk"].(float64), 1e-9)
	assert.InDelta(t, 31.5, f.Properties["ambient_temp_celsius"].(float64), 1e-9)
	assert.Equal(t, StatusModeratelyLivable, f.Properties["livability_status"])
}

func TestCurrentHeatmap_WeightsByRisk(t *testing.T) {
	points := []SamplePoint{
		{Lat: 18.5, Lon: 73.8, Risk: 60, FutureRisk3Months: 63},
		{Lat: 18.7, Lon: 74.0, Risk: 40, FutureRisk3Months: 42},
	}

	m := CurrentHeatmap(points, "Pune")

	assert.Equal(t, "Pune", m.City)
	assert.Equal(t, 11, m.Zoom)
	assert.Equal(t, "CartoDB dark_matter", m.Tiles)
	assert.InDelta(t, 18.6, m.CenterLat, 1e-9)
	assert.InDelta(t, 73.9, m.CenterLon, 1e-9)
	require.Len(t, m.Points, 2)
	assert.Equal(t, [3]float64{18.5, 73.8, 60}, m.Points[0])
	assert.Equal(t, "red", m.Gradient["1.0"])
}

func TestFutureHeatmap_WeightsByProjectedRisk(t *testing.T) {
	points := []SamplePoint{{Lat: 18.5, Lon: 73.8, Risk: 60, FutureRisk3Months: 63}}

	m := FutureHeatmap(points, "Pune")

	assert.Equal(t, "CartoDB positron", m.Tiles)
	require.Len(t, m.Points, 1)
	assert.Equal(t, [3]float64{18.5, 73.8, 63}, m.Points[0])
	assert.Equal(t, "darkred", m.Gradient["1.0"])
}

func TestHeatmap_EmptyPoints(t *testing.T) {
	m := CurrentHeatmap(nil, "Pune")
	assert.Empty(t, m.Points)
	assert.Zero(t, m.CenterLat)
	assert.Zero(t, m.CenterLon)
}
