// Package blend collapses one dimension of a forecast cube into a single
// weighted field. It generates weight curves over the coordinate, spreads
// the weight mass of missing points onto the points actually present, and
// aggregates by weighted mean or weighted maximum.
package blend

import (
	"fmt"
	"math"

	"github.com/joycezw/improver/internal/cube"
)

// Shape selects the weight-curve family.
type Shape string

const (
	ShapeLinear    Shape = "linear"
	ShapeNonLinear Shape = "nonlinear"
)

// Bias selects which end of the coordinate a non-linear curve favours.
// Earliest gives point i the weight c^i, so the first point dominates;
// Latest mirrors the curve onto the last point.
type Bias string

const (
	BiasEarliest Bias = "earliest"
	BiasLatest   Bias = "latest"
)

// Defaults applied by the configuration layer when the caller supplies no
// shape parameters. Named here so the defaulting policy is testable on its
// own rather than buried in control flow.
const (
	DefaultLinearY0   = 20.0
	DefaultLinearYEnd = 2.0
	DefaultNonLinearC = 0.85
)

// LinearSpec describes a linear weight curve from Y0 at the first point to
// an end value at the last. At most one of YEnd and Slope may be set; when
// both are nil the end value defaults to DefaultLinearYEnd.
type LinearSpec struct {
	Y0    float64
	YEnd  *float64
	Slope *float64
}

// NonLinearSpec describes a geometric weight curve with ratio C in (0, 1]
// biased towards one end of the coordinate. C = 1 weights all points
// equally.
type NonLinearSpec struct {
	C    float64
	Bias Bias
}

// WeightSpec is a tagged choice of weight curve; exactly the variant named
// by Shape is consulted.
type WeightSpec struct {
	Shape     Shape
	Linear    LinearSpec
	NonLinear NonLinearSpec
}

// Generate computes one non-negative weight per coordinate point, in point
// order. Weights are raw, not normalised; Blend normalises before use.
func Generate(points []float64, spec WeightSpec) ([]float64, error) {
	switch spec.Shape {
	case ShapeLinear:
		return linearWeights(points, spec.Linear)
	case ShapeNonLinear:
		return nonLinearWeights(points, spec.NonLinear)
	default:
		return nil, fmt.Errorf("%w: unknown weight shape %q", cube.ErrConfiguration, spec.Shape)
	}
}

// linearWeights interpolates between y0 at the first point and yEnd at the
// last by point position, so unevenly spaced coordinates are respected.
func linearWeights(points []float64, spec LinearSpec) ([]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: linear weights need at least one point", cube.ErrConfiguration)
	}
	if spec.Y0 < 0 {
		return nil, fmt.Errorf("%w: linear weight y0 must be >= 0, got %g", cube.ErrConfiguration, spec.Y0)
	}
	if spec.YEnd != nil && spec.Slope != nil {
		return nil, fmt.Errorf("%w: linear weights accept an end value or a slope, not both", cube.ErrConfiguration)
	}
	if spec.Slope != nil && len(points) < 2 {
		return nil, fmt.Errorf("%w: a slope needs at least two points, got %d", cube.ErrConfiguration, len(points))
	}
	if len(points) == 1 {
		return []float64{spec.Y0}, nil
	}

	span := points[len(points)-1] - points[0]
	var yEnd float64
	switch {
	case spec.Slope != nil:
		yEnd = spec.Y0 - *spec.Slope*span
	case spec.YEnd != nil:
		yEnd = *spec.YEnd
	default:
		yEnd = DefaultLinearYEnd
	}

	weights := make([]float64, len(points))
	for i, p := range points {
		weights[i] = spec.Y0 + (yEnd-spec.Y0)*(p-points[0])/span
		if weights[i] < 0 {
			return nil, fmt.Errorf("%w: linear weight at point %g is negative (%g)",
				cube.ErrConfiguration, p, weights[i])
		}
	}
	return weights, nil
}

// nonLinearWeights assigns weight c^i by position index from the favoured
// end of the coordinate.
func nonLinearWeights(points []float64, spec NonLinearSpec) ([]float64, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: nonlinear weights need at least one point", cube.ErrConfiguration)
	}
	if spec.C <= 0 || spec.C > 1 {
		return nil, fmt.Errorf("%w: nonlinear weight factor must be in (0, 1], got %g", cube.ErrConfiguration, spec.C)
	}
	if spec.Bias != "" && spec.Bias != BiasEarliest && spec.Bias != BiasLatest {
		return nil, fmt.Errorf("%w: unknown nonlinear bias %q", cube.ErrConfiguration, spec.Bias)
	}

	n := len(points)
	weights := make([]float64, n)
	for i := range points {
		exp := i
		if spec.Bias == BiasLatest {
			exp = n - 1 - i
		}
		weights[i] = math.Pow(spec.C, float64(exp))
	}
	return weights, nil
}
