package domain

import (
	"context"
	"log/slog"
)

// Ambient adjustment constants. The baseline is the temperature at which
// live weather neither raises nor lowers the model prediction.
const (
	baselineTempCelsius = 30.0
	tempSensitivity     = 1.5
	fallbackTempCelsius = 30.0
)

// WeatherProvider returns the current ambient temperature in Celsius for a
// coordinate.
type WeatherProvider interface {
	CurrentTemperature(ctx context.Context, lat, lon float64) (float64, error)
}

// AdjustForAmbient blends the model predictions with live ambient
// temperature. It performs exactly one weather lookup at the batch mean
// coordinate; on any failure (or a nil provider) it falls back to the
// baseline temperature and the request continues.
//
// Every point receives risk = clamp(prediction + temp_factor, 0, 100), the
// ambient livability blend, and the shared ambient temperature stamp.
func AdjustForAmbient(ctx context.Context, points []SamplePoint, weather WeatherProvider, logger *slog.Logger) []SamplePoint {
	if len(points) == 0 {
		return points
	}

	var sumLat, sumLon float64
	for i := range points {
		sumLat += points[i].Lat
		sumLon += points[i].Lon
	}
	meanLat := sumLat / float64(len(points))
	meanLon := sumLon / float64(len(points))

	temp := fallbackTempCelsius
	if weather != nil {
		t, err := weather.CurrentTemperature(ctx, meanLat, meanLon)
		if err != nil {
			logger.Warn("weather lookup failed, using fallback temperature",
				"lat", meanLat,
				"lon", meanLon,
				"fallback_celsius", fallbackTempCelsius,
				"error", err,
			)
		} else {
			temp = t
		}
	}

	tempFactor := (temp - baselineTempCelsius) * tempSensitivity

	for i := range points {
		p := &points[i]
		p.Risk = clamp(p.Prediction+tempFactor, 0, 100)
		p.AmbientLivability = (100-p.Risk)*0.4 +
			p.Features["vegetation_index"]*100*0.3 -
			p.Features["builtup_index"]*100*0.2 -
			p.Features["night_lights"]*0.1
		p.AmbientTempCelsius = temp
	}
	return points
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
