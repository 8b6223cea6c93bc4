package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joycezw/improver/internal/blend"
	"github.com/joycezw/improver/internal/config"
	"github.com/joycezw/improver/internal/cube"
	"github.com/joycezw/improver/internal/observability"
	"github.com/joycezw/improver/internal/threshold"
	"github.com/joycezw/improver/internal/units"
)

// CubeTransformer applies the configured post-processing operation to each
// incoming forecast cube: either a weighted blend over one coordinate or a
// set of threshold evaluations.
type CubeTransformer struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics

	// Threshold specs are resolved once at construction, in the configured
	// unit. Unit conversion into each cube's unit happens per cube.
	specs []threshold.Spec
}

// NewTransformer builds a transformer for the configured operation. For
// thresholding, the threshold values or config file are resolved eagerly so
// a bad configuration fails at startup rather than on the first cube.
func NewTransformer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*CubeTransformer, error) {
	t := &CubeTransformer{cfg: cfg, logger: logger, metrics: metrics}

	if cfg.Operation == config.OperationThreshold {
		specs, err := resolveSpecs(cfg.Threshold)
		if err != nil {
			return nil, err
		}
		t.specs = specs
	}
	return t, nil
}

// resolveSpecs turns the threshold configuration into concrete specs.
func resolveSpecs(tc config.ThresholdConfig) ([]threshold.Spec, error) {
	if tc.ConfigPath != "" {
		return threshold.LoadConfigFile(tc.ConfigPath)
	}
	if tc.FuzzyFactor != 0 {
		return threshold.FromFuzzyFactor(tc.Values, tc.FuzzyFactor)
	}
	return threshold.Hard(tc.Values), nil
}

// Transform decodes one raw cube message, applies the configured operation,
// and returns the processed messages. Blending yields one output;
// thresholding yields one output per threshold.
func (t *CubeTransformer) Transform(_ context.Context, raw cube.RawMessage) ([]cube.OutputMessage, error) {
	c, err := cube.Decode(raw.Value)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var results []*cube.Cube
	switch t.cfg.Operation {
	case config.OperationBlend:
		blended, err := t.blend(c)
		if err != nil {
			return nil, err
		}
		results = []*cube.Cube{blended}
	case config.OperationThreshold:
		results, err = t.threshold(c)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown operation %q", cube.ErrConfiguration, t.cfg.Operation)
	}
	t.metrics.OperationDuration.WithLabelValues(t.cfg.Operation).Observe(time.Since(start).Seconds())

	outs := make([]cube.OutputMessage, len(results))
	for i, result := range results {
		payload, err := result.Encode()
		if err != nil {
			return nil, err
		}
		t.metrics.GridPoints.Observe(float64(len(result.Data)))
		outs[i] = cube.OutputMessage{
			Key:   raw.Key,
			Value: payload,
			Headers: map[string]string{
				"operation":    t.cfg.Operation,
				"processed_at": cube.Now().UTC().Format(time.RFC3339),
			},
		}
	}

	t.logger.Debug("cube transformed",
		"cube", c.Name,
		"operation", t.cfg.Operation,
		"outputs", len(outs),
	)
	return outs, nil
}

// blend collapses the configured coordinate. The weight curve is generated
// over the expected points when configured, with the mass of points the cube
// does not carry redistributed onto those it does; otherwise the cube's own
// points define the curve.
func (t *CubeTransformer) blend(c *cube.Cube) (*cube.Cube, error) {
	bc := t.cfg.Blend

	axis, ok := c.Axis(bc.Coordinate)
	if !ok {
		return nil, fmt.Errorf("%w: cube %q has no coordinate %q", cube.ErrDomainMismatch, c.Name, bc.Coordinate)
	}
	available := c.Dims[axis].Points

	expected := bc.ExpectedPoints
	if len(expected) == 0 {
		expected = available
	}

	base, err := blend.Generate(expected, bc.WeightSpec())
	if err != nil {
		return nil, err
	}
	weights, err := blend.Redistribute(expected, available, base, bc.Method)
	if err != nil {
		return nil, err
	}
	return blend.Blend(c, bc.Coordinate, weights, bc.Mode, bc.Adjust)
}

// threshold evaluates every configured threshold against the cube. Specs
// whose unit differs from the cube's are converted first so the comparison
// always happens in the cube's unit.
func (t *CubeTransformer) threshold(c *cube.Cube) ([]*cube.Cube, error) {
	specs, err := convertSpecs(t.specs, t.cfg.Threshold.Units, c.Unit)
	if err != nil {
		return nil, err
	}
	out, err := threshold.Evaluate(c, specs, t.cfg.Threshold.CompareBelow)
	if err != nil {
		return nil, err
	}
	t.metrics.ThresholdsApplied.Add(float64(len(out)))
	return out, nil
}

// convertSpecs expresses each spec's value and fuzzy bounds in the cube's
// unit. An empty configured unit means the thresholds are already in cube
// units.
func convertSpecs(specs []threshold.Spec, from, to string) ([]threshold.Spec, error) {
	if from == "" || from == to {
		return specs, nil
	}
	out := make([]threshold.Spec, len(specs))
	for i, s := range specs {
		value, err := units.Convert(s.Value, from, to)
		if err != nil {
			return nil, err
		}
		converted := threshold.Spec{Value: value}
		if s.Fuzzy() {
			lower, err := units.Convert(*s.Lower, from, to)
			if err != nil {
				return nil, err
			}
			upper, err := units.Convert(*s.Upper, from, to)
			if err != nil {
				return nil, err
			}
			converted.Lower, converted.Upper = &lower, &upper
		}
		out[i] = converted
	}
	return out, nil
}
