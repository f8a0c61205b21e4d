package domain

import (
	"errors"
	"fmt"
)

// ErrMissingInput marks a request that cannot proceed because required input
// is absent (missing city parameter, missing feature column). HTTP handlers
// map it to a client error instead of a server error.
var ErrMissingInput = errors.New("missing input")

// FeatureRow is one raw row from the extraction service: the feature columns
// plus lat and lon.
type FeatureRow map[string]float64

// ParseFeatureRows validates raw extraction rows and converts them into
// sample points. It fails fast on the first row missing lat, lon, or any
// required feature column; partially valid tables are not accepted.
func ParseFeatureRows(rows []FeatureRow) ([]SamplePoint, error) {
	points := make([]SamplePoint, 0, len(rows))
	for i, row := range rows {
		lat, ok := row["lat"]
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no lat column", ErrMissingInput, i)
		}
		lon, ok := row["lon"]
		if !ok {
			return nil, fmt.Errorf("%w: row %d has no lon column", ErrMissingInput, i)
		}

		features := make(map[string]float64, len(FeatureNames))
		for _, name := range FeatureNames {
			v, ok := row[name]
			if !ok {
				return nil, fmt.Errorf("%w: row %d has no %s column", ErrMissingInput, i, name)
			}
			features[name] = v
		}

		points = append(points, SamplePoint{Lat: lat, Lon: lon, Features: features})
	}
	return points, nil
}
