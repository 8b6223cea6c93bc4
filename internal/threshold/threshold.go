// Package threshold converts continuous forecast values into fractional
// truth values relative to one or more thresholds. A hard comparison yields
// 0 or 1; fuzzy bounds replace the cliff edge with a linear ramp so values
// near the threshold earn partial credit.
package threshold

import (
	"fmt"

	"github.com/joycezw/improver/internal/cube"
)

// Spec is one threshold to evaluate: the comparison value (already in the
// cube's unit) and optional fuzzy bounds bracketing it. Nil bounds mean a
// hard comparison.
type Spec struct {
	Value float64
	Lower *float64
	Upper *float64
}

// Fuzzy reports whether the spec carries fuzzy bounds.
func (s Spec) Fuzzy() bool { return s.Lower != nil && s.Upper != nil }

// validate checks bound consistency: lower <= value <= upper.
func (s Spec) validate() error {
	if s.Lower == nil && s.Upper == nil {
		return nil
	}
	if s.Lower == nil || s.Upper == nil {
		return fmt.Errorf("%w: threshold %g has only one fuzzy bound", cube.ErrConfiguration, s.Value)
	}
	if *s.Lower > s.Value {
		return fmt.Errorf("%w: fuzzy lower bound %g exceeds threshold %g", cube.ErrDomainMismatch, *s.Lower, s.Value)
	}
	if *s.Upper < s.Value {
		return fmt.Errorf("%w: fuzzy upper bound %g is below threshold %g", cube.ErrDomainMismatch, *s.Upper, s.Value)
	}
	return nil
}

// FromFuzzyFactor builds one Spec per threshold value with bounds derived
// multiplicatively: [value*(1-f), value*(1+f)]. A zero threshold cannot be
// scaled this way and is rejected; express its bounds explicitly instead.
func FromFuzzyFactor(values []float64, factor float64) ([]Spec, error) {
	if factor <= 0 || factor >= 1 {
		return nil, fmt.Errorf("%w: fuzzy factor must be in (0, 1), got %g", cube.ErrConfiguration, factor)
	}
	specs := make([]Spec, len(values))
	for i, v := range values {
		if v == 0 {
			return nil, fmt.Errorf("%w: a fuzzy factor cannot scale a zero threshold; give explicit bounds",
				cube.ErrConfiguration)
		}
		lower, upper := v*(1-factor), v*(1+factor)
		if lower > upper {
			// Negative thresholds flip the product order.
			lower, upper = upper, lower
		}
		specs[i] = Spec{Value: v, Lower: &lower, Upper: &upper}
	}
	return specs, nil
}

// Hard builds plain 0/1 comparison specs from bare threshold values.
func Hard(values []float64) []Spec {
	specs := make([]Spec, len(values))
	for i, v := range values {
		specs[i] = Spec{Value: v}
	}
	return specs
}

// Evaluate produces one truth cube per spec, in spec order. Each output has
// the input's shape, values in [0, 1], unit "1", a probability name derived
// from the input, and the threshold attached as a scalar coordinate.
// compareBelow flips the comparison (and the fuzzy ramp) so that values
// under the threshold count as true.
func Evaluate(c *cube.Cube, specs []Spec, compareBelow bool) ([]*cube.Cube, error) {
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}

	relation := "above"
	if compareBelow {
		relation = "below"
	}

	out := make([]*cube.Cube, len(specs))
	for i, s := range specs {
		truth := c.Map(truthFunc(s, compareBelow))
		truth.Name = fmt.Sprintf("probability_of_%s_%s_threshold", c.Name, relation)
		truth.Unit = "1"
		truth.Scalars = append(truth.Scalars, cube.Coordinate{
			Name:   "threshold",
			Points: []float64{s.Value},
			Unit:   c.Unit,
		})
		out[i] = truth
	}
	return out, nil
}

// truthFunc returns the per-value truth function for one spec.
//
// Hard comparisons are strict: a value exactly on the threshold is false.
// Fuzzy comparisons ramp linearly from 0 at the lower bound to 1 at the
// upper bound; compareBelow inverts the ramp.
func truthFunc(s Spec, compareBelow bool) func(float64) float64 {
	if !s.Fuzzy() || *s.Upper == *s.Lower {
		if compareBelow {
			return func(v float64) float64 {
				if v < s.Value {
					return 1
				}
				return 0
			}
		}
		return func(v float64) float64 {
			if v > s.Value {
				return 1
			}
			return 0
		}
	}

	lower, width := *s.Lower, *s.Upper-*s.Lower
	return func(v float64) float64 {
		ramp := (v - lower) / width
		if ramp < 0 {
			ramp = 0
		} else if ramp > 1 {
			ramp = 1
		}
		if compareBelow {
			return 1 - ramp
		}
		return ramp
	}
}
