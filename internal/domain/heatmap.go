package domain

// Heatmap payloads for the /generate-maps endpoint. The frontend renders
// them client-side; gradients and legends match the original dashboard
// styling.

// HeatmapPayload describes one renderable heat layer.
type HeatmapPayload struct {
	City      string             `json:"city"`
	CenterLat float64            `json:"center_lat"`
	CenterLon float64            `json:"center_lon"`
	Zoom      int                `json:"zoom"`
	Tiles     string             `json:"tiles"`
	Radius    int                `json:"radius"`
	Blur      int                `json:"blur"`
	Gradient  map[string]string  `json:"gradient"`
	Legend    []HeatmapLegendRow `json:"legend"`
	Title     string             `json:"title"`
	// Points are [lat, lon, weight] triplets.
	Points [][3]float64 `json:"points"`
}

// HeatmapLegendRow is one color/label pair in a heatmap legend.
type HeatmapLegendRow struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// CurrentHeatmap builds the heat layer weighted by present-day risk.
func CurrentHeatmap(points []SamplePoint, city string) HeatmapPayload {
	payload := baseHeatmap(points, city)
	payload.Tiles = "CartoDB dark_matter"
	payload.Title = "Current Heat Risk"
	payload.Gradient = map[string]string{
		"0.2": "blue",
		"0.4": "lime",
		"0.6": "yellow",
		"0.8": "orange",
		"1.0": "red",
	}
	payload.Legend = []HeatmapLegendRow{
		{Color: "blue", Label: "Safe / Cool"},
		{Color: "lime", Label: "Mild"},
		{Color: "yellow", Label: "Moderate"},
		{Color: "orange", Label: "High Risk"},
		{Color: "red", Label: "Severe Danger"},
	}
	for i := range points {
		payload.Points = append(payload.Points, [3]float64{points[i].Lat, points[i].Lon, points[i].Risk})
	}
	return payload
}

// FutureHeatmap builds the heat layer weighted by the 3-month projection.
func FutureHeatmap(points []SamplePoint, city string) HeatmapPayload {
	payload := baseHeatmap(points, city)
	payload.Tiles = "CartoDB positron"
	payload.Title = "Projected 3-Month Risk"
	payload.Gradient = map[string]string{
		"0.2": "teal",
		"0.5": "yellow",
		"0.7": "orange",
		"1.0": "darkred",
	}
	payload.Legend = []HeatmapLegendRow{
		{Color: "teal", Label: "Stable"},
		{Color: "yellow", Label: "Emerging Threat"},
		{Color: "orange", Label: "High Projected Risk"},
		{Color: "darkred", Label: "Critical Projection"},
	}
	for i := range points {
		payload.Points = append(payload.Points, [3]float64{points[i].Lat, points[i].Lon, points[i].FutureRisk3Months})
	}
	return payload
}

func baseHeatmap(points []SamplePoint, city string) HeatmapPayload {
	payload := HeatmapPayload{
		City:   city,
		Zoom:   11,
		Radius: 35,
		Blur:   25,
	}
	if len(points) == 0 {
		return payload
	}
	var sumLat, sumLon float64
	for i := range points {
		sumLat += points[i].Lat
		sumLon += points[i].Lon
	}
	payload.CenterLat = sumLat / float64(len(points))
	payload.CenterLon = sumLon / float64(len(points))
	return payload
}
