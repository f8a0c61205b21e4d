// Package domain models urban-heat-island (UHI) analysis for a city.
//
// # Data Source
//
// Sample points originate from a satellite feature-extraction service that
// samples Sentinel-2 / Landsat derived indices over a city's region of
// interest (trailing 60-day composite, ~500 m sampling grid). Each point
// carries a fixed set of numeric feature columns:
//
//	vegetation_index                NDVI, -1..1
//	builtup_index                   NDBI, -1..1
//	enhanced_vegetation_index       EVI
//	soil_adjusted_vegetation_index  SAVI
//	albedo                          broadband surface albedo
//	water_index                     MNDWI
//	builtup_intensity               IBI (NDBI minus NDVI)
//	elevation                       meters above sea level
//	slope                           degrees
//	night_lights                    VIIRS average radiance
//
// A pretrained regression model maps the feature vector to a predicted heat
// value on a 0–100 scale, which the ambient adjustment shifts by live
// temperature before clamping.
//
// # Derivation conventions
//
// All derived metrics are pure functions of already-validated numeric
// fields; a failure inside derivation is a programming error, not a
// recoverable condition. Risk is always clamped to [0,100] and
// resilience_score is its complement, so risk + resilience_score == 100 up
// to rounding for every point.
//
// Two livability scores coexist on purpose: `livability` (ambient blend,
// computed with the risk adjustment) and `livability_index` (the ranking
// score). Downstream consumers depend on both fields, so neither is merged
// into the other.
//
// # Locality resolution
//
// Reverse-geocoded locality names are keyed on coordinates rounded to three
// decimal places (~110 m), so nearby points collapse onto one lookup. A
// lookup that fails or returns no usable component resolves to the
// "Unknown" sentinel and is memoized like any other result.
package domain
