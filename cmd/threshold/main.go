// Command threshold evaluates one or more thresholds against a forecast
// cube, reading the cube from a JSON file and writing the resulting truth
// cubes as a JSON array.
//
// Usage:
//
//	go run ./cmd/threshold \
//	  -in cube.json -out probabilities.json \
//	  -values 273.15,280 -fuzzy-factor 0.05 -units K
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joycezw/improver/internal/cube"
	"github.com/joycezw/improver/internal/threshold"
	"github.com/joycezw/improver/internal/units"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "input cube JSON file")
	out := flag.String("out", "", "output file (default stdout)")
	values := flag.String("values", "", "comma-separated threshold values")
	configPath := flag.String("config", "", "threshold configuration JSON file (excludes -values and -fuzzy-factor)")
	fuzzyFactor := flag.Float64("fuzzy-factor", 0, "multiplicative fuzzy-bound factor in (0, 1)")
	comparison := flag.String("comparison", "above", "comparison direction: above or below")
	thresholdUnits := flag.String("units", "", "unit the threshold values are given in (default: cube unit)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -in")
	}
	if *values != "" && *configPath != "" {
		return fmt.Errorf("-values and -config are mutually exclusive")
	}
	if *fuzzyFactor != 0 && *configPath != "" {
		return fmt.Errorf("-fuzzy-factor and -config are mutually exclusive")
	}
	if *values == "" && *configPath == "" {
		return fmt.Errorf("missing thresholds: give -values or -config")
	}
	if *comparison != "above" && *comparison != "below" {
		return fmt.Errorf("invalid -comparison %q: must be above or below", *comparison)
	}

	specs, err := resolveSpecs(*values, *configPath, *fuzzyFactor)
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

	if *thresholdUnits != "" {
		if specs, err = convertSpecs(specs, *thresholdUnits, input.Unit); err != nil {
			return err
		}
	}

	results, err := threshold.Evaluate(input, specs, *comparison == "below")
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return writeOutput(*out, encoded)
}

func resolveSpecs(values, configPath string, fuzzyFactor float64) ([]threshold.Spec, error) {
	if configPath != "" {
		return threshold.LoadConfigFile(configPath)
	}
	parsed, err := parseValues(values)
	if err != nil {
		return nil, err
	}
	if fuzzyFactor != 0 {
		return threshold.FromFuzzyFactor(parsed, fuzzyFactor)
	}
	return threshold.Hard(parsed), nil
}

func convertSpecs(specs []threshold.Spec, from, to string) ([]threshold.Spec, error) {
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

func parseValues(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid -values entry %q", p)
		}
		values = append(values, v)
	}
	return values, nil
}

func writeOutput(path string, data []byte) error {
	data = append(data, '\n')
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
