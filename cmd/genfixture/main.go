// Command genfixture generates deterministic forecast-cube fixtures for the
// test suites and for feeding the streaming service by hand. It runs the
// actual blend code so the blended fixture matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -raw-out data/fixtures/air_temperature_raw.json \
//	  -blended-out data/fixtures/air_temperature_blended.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/joycezw/improver/internal/blend"
	"github.com/joycezw/improver/internal/cube"
)

var referenceTime = time.Date(2026, time.March, 14, 6, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	rawOut := flag.String("raw-out", "", "output path for the raw cube fixture")
	blendedOut := flag.String("blended-out", "", "output path for the blended cube fixture")
	flag.Parse()

	if *rawOut == "" || *blendedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -blended-out")
	}

	// Fix the clock so regenerated fixtures are byte-identical.
	cube.SetClock(clockwork.NewFakeClockAt(referenceTime))
	defer cube.SetClock(nil)

	raw, err := makeCube()
	if err != nil {
		return fmt.Errorf("build raw cube: %w", err)
	}

	leadTimes := raw.Dims[0].Points
	weights, err := blend.Generate(leadTimes, blend.WeightSpec{Shape: blend.ShapeLinear, Linear: blend.LinearSpec{Y0: blend.DefaultLinearY0}})
	if err != nil {
		return err
	}
	weightMap, err := blend.Redistribute(leadTimes, leadTimes, weights, blend.RedistributeEvenly)
	if err != nil {
		return err
	}
	blended, err := blend.Blend(raw, "forecast_period", weightMap, blend.WeightedMean, blend.AdjustIdentity)
	if err != nil {
		return err
	}

	if err := writeJSON(*rawOut, raw); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s (%d values)", *rawOut, len(raw.Data))

	if err := writeJSON(*blendedOut, blended); err != nil {
		return fmt.Errorf("writing blended fixture: %w", err)
	}
	log.Printf("wrote blended fixture: %s (%d values)", *blendedOut, len(blended.Data))
	return nil
}

// makeCube builds a small air-temperature cube over three lead times and a
// 4x5 grid. Values follow a smooth analytic field so failures in the
// numeric core show up as recognisable patterns rather than noise.
func makeCube() (*cube.Cube, error) {
	leadTimes := []float64{0, 6, 12}
	lats := []float64{50, 51, 52, 53}
	lons := []float64{-4, -3, -2, -1, 0}

	data := make([]float64, 0, len(leadTimes)*len(lats)*len(lons))
	for _, lt := range leadTimes {
		for _, lat := range lats {
			for _, lon := range lons {
				v := 283 + 2*math.Sin(lat/10) + 1.5*math.Cos(lon/5) + 0.2*lt
				data = append(data, math.Round(v*100)/100)
			}
		}
	}

	c, err := cube.New("air_temperature", "K", []cube.Coordinate{
		{Name: "forecast_period", Points: leadTimes, Unit: "h"},
		{Name: "latitude", Points: lats, Unit: "degrees"},
		{Name: "longitude", Points: lons, Unit: "degrees"},
	}, data)
	if err != nil {
		return nil, err
	}

	c.Scalars = append(c.Scalars, cube.Coordinate{
		Name:   "forecast_reference_time",
		Points: []float64{float64(cube.Now().Unix())},
		Unit:   "seconds since 1970-01-01 00:00:00",
	})
	return c, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
