// Command blend collapses one coordinate of a forecast cube into a single
// weighted field, reading the cube from a JSON file and writing the blended
// cube back out.
//
// Usage:
//
//	go run ./cmd/blend \
//	  -in cube.json -out blended.json \
//	  -coordinate forecast_period -shape linear -y0 20 -yend 2
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joycezw/improver/internal/blend"
	"github.com/joycezw/improver/internal/cube"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input cube JSON file")
	out := flag.String("out", "", "output file (default stdout)")
	coordinate := flag.String("coordinate", "forecast_period", "coordinate to collapse")
	shape := flag.String("shape", "linear", "weight curve shape: linear or nonlinear")
	y0 := flag.Float64("y0", blend.DefaultLinearY0, "linear weight at the first point")
	yEnd := flag.String("yend", "", "linear weight at the last point")
	slope := flag.String("slope", "", "linear curve slope (excludes -yend)")
	cval := flag.String("cval", "", "nonlinear geometric ratio in (0, 1]")
	bias := flag.String("bias", "earliest", "nonlinear bias: earliest or latest")
	expected := flag.String("expected", "", "comma-separated expected coordinate points")
	method := flag.String("method", "evenly", "missing-weight redistribution: evenly or proportional")
	mode := flag.String("mode", "weighted_mean", "aggregation: weighted_mean or weighted_maximum")
	adjust := flag.String("adjust", "identity", "collapsed point adjustment: identity, round_hour, or rebase_origin")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}

	spec := blend.WeightSpec{
		Shape:     blend.Shape(*shape),
		Linear:    blend.LinearSpec{Y0: *y0},
		NonLinear: blend.NonLinearSpec{C: blend.DefaultNonLinearC, Bias: blend.Bias(*bias)},
	}

	var err error
	if spec.Linear.YEnd, err = optionalFloat("yend", *yEnd); err != nil {
		return err
	}
	if spec.Linear.Slope, err = optionalFloat("slope", *slope); err != nil {
		return err
	}
	c, err := optionalFloat("cval", *cval)
	if err != nil {
		return err
	}
	if c != nil {
		if spec.Shape != blend.ShapeNonLinear {
			return fmt.Errorf("-cval only applies to the nonlinear shape")
		}
		spec.NonLinear.C = *c
	}

	expectedPoints, err := parsePoints(*expected)
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read cube: %w", err)
	}
	input, err := cube.Decode(payload)
	if err != nil {
		return err
	}

	axis, ok := input.Axis(*coordinate)
	if !ok {
		return fmt.Errorf("%w: cube %q has no coordinate %q", cube.ErrDomainMismatch, input.Name, *coordinate)
	}
	available := input.Dims[axis].Points
	if len(expectedPoints) == 0 {
		expectedPoints = available
	}

	base, err := blend.Generate(expectedPoints, spec)
	if err != nil {
		return err
	}
	weights, err := blend.Redistribute(expectedPoints, available, base, blend.Method(*method))
	if err != nil {
		return err
	}
	result, err := blend.Blend(input, *coordinate, weights, blend.Mode(*mode), blend.CoordAdjust(*adjust))
	if err != nil {
		return err
	}

	encoded, err := result.Encode()
	if err != nil {
		return err
	}
	return writeOutput(*out, encoded)
}

func optionalFloat(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s value %q", name, raw)
	}
	return &v, nil
}

func parsePoints(raw string) ([]float64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	points := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -expected entry %q", p)
		}
		points = append(points, v)
	}
	return points, nil
}

func writeOutput(path string, data []byte) error {
	data = append(data, '\n')
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
