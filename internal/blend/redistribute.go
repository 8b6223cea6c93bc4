package blend

import (
	"fmt"

	"github.com/joycezw/improver/internal/cube"
)

// WeightMap assigns a non-negative weight to each coordinate point.
type WeightMap map[float64]float64

// Sum returns the total weight mass in the map.
func (m WeightMap) Sum() float64 {
	var total float64
	for _, w := range m {
		total += w
	}
	return total
}

// Method selects how the weight mass of missing points is spread onto the
// points actually present.
type Method string

const (
	// RedistributeEvenly splits the missing mass equally between the
	// present points.
	RedistributeEvenly Method = "evenly"
	// RedistributeProportional splits the missing mass in proportion to
	// each present point's own base weight.
	RedistributeProportional Method = "proportional"
)

// Redistribute maps baseWeights (one per expected point, in order) onto the
// available points, reassigning the weight of any missing point so the
// total mass is conserved. A data set holding every expected point comes
// back unchanged.
func Redistribute(expected, available []float64, baseWeights []float64, method Method) (WeightMap, error) {
	if len(baseWeights) != len(expected) {
		return nil, fmt.Errorf("%w: %d base weights for %d expected points",
			cube.ErrDomainMismatch, len(baseWeights), len(expected))
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("%w: no available points to redistribute onto", cube.ErrDomainMismatch)
	}
	if method != RedistributeEvenly && method != RedistributeProportional {
		return nil, fmt.Errorf("%w: unknown redistribution method %q", cube.ErrConfiguration, method)
	}

	base := make(WeightMap, len(expected))
	for i, p := range expected {
		base[p] = baseWeights[i]
	}

	out := make(WeightMap, len(available))
	var presentTotal float64
	for _, p := range available {
		w, ok := base[p]
		if !ok {
			return nil, fmt.Errorf("%w: point %g is not among the expected points", cube.ErrDomainMismatch, p)
		}
		out[p] = w
		presentTotal += w
	}

	missingTotal := 0.0
	for p, w := range base {
		if _, present := out[p]; !present {
			missingTotal += w
		}
	}
	if missingTotal == 0 {
		return out, nil
	}

	switch method {
	case RedistributeEvenly:
		share := missingTotal / float64(len(available))
		for p := range out {
			out[p] += share
		}
	case RedistributeProportional:
		if presentTotal == 0 {
			return nil, fmt.Errorf("%w: present weights sum to zero, cannot redistribute proportionally",
				cube.ErrDomainMismatch)
		}
		for p, w := range out {
			out[p] += missingTotal * w / presentTotal
		}
	}
	return out, nil
}
