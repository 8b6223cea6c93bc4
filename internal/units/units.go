// Package units converts scalar values between compatible physical units.
// It covers the handful of unit families that appear in forecast
// post-processing (temperature, length, precipitation rate, duration); it is
// deliberately not a full CF-units engine. Threshold values and fuzzy
// bounds are converted here before they reach the thresholding core.
package units

import (
	"fmt"

	"github.com/joycezw/improver/internal/cube"
)

// unit describes an affine mapping onto its family's base unit:
// base = value*scale + offset.
type unit struct {
	family string
	scale  float64
	offset float64
}

// Aliases map onto one canonical entry each. Base units: kelvin, metres,
// metres per second, seconds.
var units = map[string]unit{
	"K":       {family: "temperature", scale: 1},
	"kelvin":  {family: "temperature", scale: 1},
	"C":       {family: "temperature", scale: 1, offset: 273.15},
	"celsius": {family: "temperature", scale: 1, offset: 273.15},
	"F":       {family: "temperature", scale: 5.0 / 9.0, offset: 273.15 - 32*5.0/9.0},

	"m":  {family: "length", scale: 1},
	"cm": {family: "length", scale: 0.01},
	"mm": {family: "length", scale: 0.001},
	"in": {family: "length", scale: 0.0254},

	"m s-1":   {family: "rate", scale: 1},
	"mm h-1":  {family: "rate", scale: 0.001 / 3600},
	"mm hr-1": {family: "rate", scale: 0.001 / 3600},

	"s":       {family: "duration", scale: 1},
	"seconds": {family: "duration", scale: 1},
	"min":     {family: "duration", scale: 60},
	"minutes": {family: "duration", scale: 60},
	"h":       {family: "duration", scale: 3600},
	"hours":   {family: "duration", scale: 3600},
}

// Convert expresses value, given in unit from, in unit to. Identical unit
// strings convert without table lookup, so units outside the table still
// pass through unchanged when no conversion is needed.
func Convert(value float64, from, to string) (float64, error) {
	if from == to {
		return value, nil
	}
	src, ok := units[from]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", cube.ErrData, from)
	}
	dst, ok := units[to]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", cube.ErrData, to)
	}
	if src.family != dst.family {
		return 0, fmt.Errorf("%w: cannot convert %s unit %q to %s unit %q",
			cube.ErrData, src.family, from, dst.family, to)
	}
	base := value*src.scale + src.offset
	return (base - dst.offset) / dst.scale, nil
}

// ConvertSlice converts every value in vs from one unit to another,
// returning a new slice.
func ConvertSlice(vs []float64, from, to string) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		converted, err := Convert(v, from, to)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
