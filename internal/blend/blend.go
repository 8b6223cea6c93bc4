package blend

import (
	"fmt"
	"math"

	"github.com/joycezw/improver/internal/cube"
)

// Mode selects the aggregation used when collapsing the blend axis.
type Mode string

const (
	// WeightedMean sums value×weight across the axis, a convex
	// combination once weights are normalised.
	WeightedMean Mode = "weighted_mean"
	// WeightedMaximum keeps the single largest value×weight across the
	// axis, so one forecast's weighted extreme dominates instead of
	// being averaged away.
	WeightedMaximum Mode = "weighted_maximum"
)

// CoordAdjust names the transform applied to the collapsed coordinate's
// representative point. These are a fixed enumeration, never user code.
type CoordAdjust string

const (
	// AdjustIdentity keeps the weighted-mean point as computed.
	AdjustIdentity CoordAdjust = "identity"
	// AdjustRoundHour rounds the point to the nearest whole hour; the
	// coordinate unit must be a duration (seconds, minutes or hours).
	AdjustRoundHour CoordAdjust = "round_hour"
	// AdjustRebaseOrigin re-expresses the point relative to the first
	// point of the blend axis.
	AdjustRebaseOrigin CoordAdjust = "rebase_origin"
)

// Blend collapses the named axis of c using the given weight map. Weights
// are normalised to sum to one before use, so WeightedMean is a true
// weighted mean. The collapsed axis survives as a scalar coordinate whose
// point is the weighted mean of the axis points passed through adjust. The
// input cube is not modified.
func Blend(c *cube.Cube, axisName string, weights WeightMap, mode Mode, adjust CoordAdjust) (*cube.Cube, error) {
	axis, ok := c.Axis(axisName)
	if !ok {
		return nil, fmt.Errorf("%w: cube %q has no coordinate %q", cube.ErrDomainMismatch, c.Name, axisName)
	}
	coord := c.Dims[axis]

	norm := make([]float64, len(coord.Points))
	var total float64
	for i, p := range coord.Points {
		w, ok := weights[p]
		if !ok {
			return nil, fmt.Errorf("%w: no weight for %s point %g", cube.ErrDomainMismatch, axisName, p)
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight %g for %s point %g", cube.ErrDomainMismatch, w, axisName, p)
		}
		norm[i] = w
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights for %s sum to %g, must be positive", cube.ErrDomainMismatch, axisName, total)
	}
	for i := range norm {
		norm[i] /= total
	}

	var reduce func(values []float64) float64
	switch mode {
	case WeightedMean:
		reduce = func(values []float64) float64 {
			var sum float64
			for i, v := range values {
				sum += v * norm[i]
			}
			return sum
		}
	case WeightedMaximum:
		reduce = func(values []float64) float64 {
			best := math.Inf(-1)
			for i, v := range values {
				if wv := v * norm[i]; wv > best {
					best = wv
				}
			}
			return best
		}
	default:
		return nil, fmt.Errorf("%w: unknown blend mode %q", cube.ErrConfiguration, mode)
	}

	var point float64
	for i, p := range coord.Points {
		point += p * norm[i]
	}
	point, err := adjustPoint(point, coord, adjust)
	if err != nil {
		return nil, err
	}

	return c.Collapse(axis, point, reduce)
}

// adjustPoint applies the configured transform to the collapsed
// coordinate's representative point.
func adjustPoint(point float64, coord cube.Coordinate, adjust CoordAdjust) (float64, error) {
	switch adjust {
	case AdjustIdentity, "":
		return point, nil
	case AdjustRoundHour:
		switch coord.Unit {
		case "h", "hours":
			return math.Round(point), nil
		case "min", "minutes":
			return math.Round(point/60) * 60, nil
		case "s", "seconds":
			return math.Round(point/3600) * 3600, nil
		default:
			return 0, fmt.Errorf("%w: cannot round coordinate %q with unit %q to the nearest hour",
				cube.ErrConfiguration, coord.Name, coord.Unit)
		}
	case AdjustRebaseOrigin:
		return point - coord.Points[0], nil
	default:
		return 0, fmt.Errorf("%w: unknown coordinate adjustment %q", cube.ErrConfiguration, adjust)
	}
}
