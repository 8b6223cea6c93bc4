package threshold

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/joycezw/improver/internal/cube"
)

// ParseConfig decodes a threshold-configuration mapping: string-encoded
// threshold values, each mapped to a [lower, upper] fuzzy-bound pair, e.g.
//
//	{"280.0": [278.0, 282.0], "290.0": [288.0, 292.0]}
//
// The object is walked in document order so that duplicate threshold values
// overwrite earlier ones (last one wins); distinct spellings of the same
// value ("280" and "280.0") collapse the same way. The resulting specs are
// sorted ascending by threshold value. Bound consistency is checked
// eagerly.
func ParseConfig(payload []byte) ([]Spec, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: decode threshold config: %v", cube.ErrData, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: threshold config must be a JSON object", cube.ErrData)
	}

	byValue := make(map[float64][2]float64)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: decode threshold config: %v", cube.ErrData, err)
		}
		key := keyTok.(string)

		value, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: threshold config key %q is not numeric", cube.ErrData, key)
		}

		var bounds []float64
		if err := dec.Decode(&bounds); err != nil {
			return nil, fmt.Errorf("%w: bounds for threshold %q: %v", cube.ErrData, key, err)
		}
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%w: threshold %q needs exactly [lower, upper] bounds, got %d values",
				cube.ErrData, key, len(bounds))
		}
		byValue[value] = [2]float64{bounds[0], bounds[1]}
	}

	specs := make([]Spec, 0, len(byValue))
	for value, bounds := range byValue {
		lower, upper := bounds[0], bounds[1]
		s := Spec{Value: value, Lower: &lower, Upper: &upper}
		if err := s.validate(); err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Value < specs[j].Value })
	return specs, nil
}

// LoadConfigFile reads and parses a threshold-configuration file.
func LoadConfigFile(path string) ([]Spec, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read threshold config %s: %w", path, err)
	}
	return ParseConfig(payload)
}
