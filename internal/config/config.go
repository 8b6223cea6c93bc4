// Package config loads service settings from environment variables,
// applying defaults and validating eagerly so the post-processing core only
// ever sees consistent parameters.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joycezw/improver/internal/blend"
	"github.com/joycezw/improver/internal/cube"
)

// Operation names for the streaming service.
const (
	OperationBlend     = "blend"
	OperationThreshold = "threshold"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Operation selects what the transformer does to each cube.
	Operation string
	Blend     BlendConfig
	Threshold ThresholdConfig
}

// BlendConfig parameterises the weighted-blend operation.
type BlendConfig struct {
	Coordinate string
	Shape      blend.Shape
	Y0         float64
	YEnd       *float64
	Slope      *float64
	C          float64
	Bias       blend.Bias

	// ExpectedPoints lists the coordinate points the weight curve is
	// computed over. Incoming cubes holding only a subset get the missing
	// weight mass redistributed. Empty means use each cube's own points.
	ExpectedPoints []float64

	Method blend.Method
	Mode   blend.Mode
	Adjust blend.CoordAdjust
}

// WeightSpec assembles the blend.WeightSpec this configuration describes.
func (b BlendConfig) WeightSpec() blend.WeightSpec {
	return blend.WeightSpec{
		Shape:     b.Shape,
		Linear:    blend.LinearSpec{Y0: b.Y0, YEnd: b.YEnd, Slope: b.Slope},
		NonLinear: blend.NonLinearSpec{C: b.C, Bias: b.Bias},
	}
}

// ThresholdConfig parameterises the thresholding operation. Values and
// ConfigPath are mutually exclusive, as are FuzzyFactor and ConfigPath.
type ThresholdConfig struct {
	Values       []float64
	ConfigPath   string
	FuzzyFactor  float64
	CompareBelow bool
	Units        string
}

// Load reads configuration from environment variables, applying defaults
// where unset and rejecting inconsistent combinations before anything runs.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	flushInterval, err := parseDurationEnv("BATCH_FLUSH_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	batchSize, err := parseIntEnv("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-forecast-cubes"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "processed-forecast-cubes"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "forecast-postproc"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		Operation:          envOrDefault("OPERATION", OperationBlend),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("%w: KAFKA_BROKERS is required", cube.ErrConfiguration)
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, fmt.Errorf("%w: KAFKA_SOURCE_TOPIC is required", cube.ErrConfiguration)
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, fmt.Errorf("%w: KAFKA_SINK_TOPIC is required", cube.ErrConfiguration)
	}

	switch cfg.Operation {
	case OperationBlend:
		cfg.Blend, err = loadBlend()
	case OperationThreshold:
		cfg.Threshold, err = loadThreshold()
	default:
		return nil, fmt.Errorf("%w: OPERATION must be %q or %q, got %q",
			cube.ErrConfiguration, OperationBlend, OperationThreshold, cfg.Operation)
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadBlend() (BlendConfig, error) {
	b := BlendConfig{
		Coordinate: envOrDefault("BLEND_COORDINATE", "forecast_period"),
		Shape:      blend.Shape(envOrDefault("WEIGHTS_SHAPE", string(blend.ShapeLinear))),
		Bias:       blend.Bias(envOrDefault("WEIGHTS_BIAS", string(blend.BiasEarliest))),
		Method:     blend.Method(envOrDefault("REDISTRIBUTION_METHOD", string(blend.RedistributeEvenly))),
		Mode:       blend.Mode(envOrDefault("BLEND_MODE", string(blend.WeightedMean))),
		Adjust:     blend.CoordAdjust(envOrDefault("COORD_ADJUST", string(blend.AdjustIdentity))),
	}

	y0, err := parseFloatEnv("WEIGHTS_Y0", blend.DefaultLinearY0)
	if err != nil {
		return b, err
	}
	b.Y0 = y0

	if b.YEnd, err = parseOptionalFloatEnv("WEIGHTS_YEND"); err != nil {
		return b, err
	}
	if b.Slope, err = parseOptionalFloatEnv("WEIGHTS_SLOPE"); err != nil {
		return b, err
	}
	if b.YEnd != nil && b.Slope != nil {
		return b, fmt.Errorf("%w: WEIGHTS_YEND and WEIGHTS_SLOPE are mutually exclusive", cube.ErrConfiguration)
	}

	cval, err := parseOptionalFloatEnv("WEIGHTS_CVAL")
	if err != nil {
		return b, err
	}
	if cval != nil && b.Shape != blend.ShapeNonLinear {
		return b, fmt.Errorf("%w: WEIGHTS_CVAL only applies to the nonlinear weight shape", cube.ErrConfiguration)
	}
	b.C = blend.DefaultNonLinearC
	if cval != nil {
		b.C = *cval
	}

	if b.ExpectedPoints, err = parseFloatListEnv("BLEND_EXPECTED_POINTS"); err != nil {
		return b, err
	}
	return b, nil
}

func loadThreshold() (ThresholdConfig, error) {
	t := ThresholdConfig{
		ConfigPath:   os.Getenv("THRESHOLD_CONFIG_PATH"),
		CompareBelow: envOrDefault("COMPARISON", "above") == "below",
		Units:        os.Getenv("THRESHOLD_UNITS"),
	}

	values, err := parseFloatListEnv("THRESHOLD_VALUES")
	if err != nil {
		return t, err
	}
	t.Values = values

	factor, err := parseOptionalFloatEnv("FUZZY_FACTOR")
	if err != nil {
		return t, err
	}
	if factor != nil {
		t.FuzzyFactor = *factor
	}

	if len(t.Values) > 0 && t.ConfigPath != "" {
		return t, fmt.Errorf("%w: THRESHOLD_VALUES and THRESHOLD_CONFIG_PATH are mutually exclusive", cube.ErrConfiguration)
	}
	if len(t.Values) == 0 && t.ConfigPath == "" {
		return t, fmt.Errorf("%w: thresholding needs THRESHOLD_VALUES or THRESHOLD_CONFIG_PATH", cube.ErrConfiguration)
	}
	if factor != nil && t.ConfigPath != "" {
		return t, fmt.Errorf("%w: FUZZY_FACTOR and THRESHOLD_CONFIG_PATH are mutually exclusive", cube.ErrConfiguration)
	}
	return t, nil
}

// --- env helpers ---

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", cube.ErrConfiguration, key, raw)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", cube.ErrConfiguration, key, raw)
	}
	return n, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", cube.ErrConfiguration, key, raw)
	}
	return v, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", cube.ErrConfiguration, key, raw)
	}
	return &v, nil
}

func parseFloatListEnv(key string) ([]float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s entry %q", cube.ErrConfiguration, key, p)
		}
		values = append(values, v)
	}
	return values, nil
}
