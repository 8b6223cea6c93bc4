package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joycezw/improver/internal/cube"
)

func floatPtr(v float64) *float64 { return &v }

func TestGenerate_Linear(t *testing.T) {
	t.Run("default end value over uneven spacing", func(t *testing.T) {
		// y0=20 falling to yn=2 across [0, 6, 12]: interpolation is by
		// point position, so 6 lands exactly halfway.
		weights, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: DefaultLinearY0},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{20, 11, 2}, weights, 1e-9)
	})

	t.Run("endpoints are exact", func(t *testing.T) {
		weights, err := Generate([]float64{0, 1, 5, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 10, YEnd: floatPtr(4)},
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, weights[0])
		assert.Equal(t, 4.0, weights[len(weights)-1])
		for i := 1; i < len(weights); i++ {
			assert.LessOrEqual(t, weights[i], weights[i-1], "weights must fall monotonically")
		}
	})

	t.Run("uneven spacing interpolates by position", func(t *testing.T) {
		weights, err := Generate([]float64{0, 3, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 12, YEnd: floatPtr(0)},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{12, 9, 0}, weights, 1e-9)
	})

	t.Run("rising curve", func(t *testing.T) {
		weights, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 2, YEnd: floatPtr(20)},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{2, 11, 20}, weights, 1e-9)
	})

	t.Run("slope derives the end value", func(t *testing.T) {
		// yn = y0 - slope*span = 20 - 1.5*12 = 2.
		weights, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 20, Slope: floatPtr(1.5)},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{20, 11, 2}, weights, 1e-9)
	})

	t.Run("single point with end value", func(t *testing.T) {
		weights, err := Generate([]float64{6}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 20, YEnd: floatPtr(2)},
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{20}, weights)
	})

	t.Run("slope and end value are mutually exclusive", func(t *testing.T) {
		_, err := Generate([]float64{0, 6}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 20, YEnd: floatPtr(2), Slope: floatPtr(1)},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
		assert.Contains(t, err.Error(), "not both")
	})

	t.Run("slope needs two points", func(t *testing.T) {
		_, err := Generate([]float64{6}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 20, Slope: floatPtr(1)},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
	})

	t.Run("empty points", func(t *testing.T) {
		_, err := Generate(nil, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: DefaultLinearY0},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
		assert.Contains(t, err.Error(), "at least one point")
	})

	t.Run("negative y0", func(t *testing.T) {
		_, err := Generate([]float64{0, 6}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: -1},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
	})

	t.Run("steep slope drives weights negative", func(t *testing.T) {
		_, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:  ShapeLinear,
			Linear: LinearSpec{Y0: 10, Slope: floatPtr(2)},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
		assert.Contains(t, err.Error(), "negative")
	})
}

func TestGenerate_NonLinear(t *testing.T) {
	t.Run("factor one weights all points equally", func(t *testing.T) {
		weights, err := Generate([]float64{0, 6, 12, 18}, WeightSpec{
			Shape:     ShapeNonLinear,
			NonLinear: NonLinearSpec{C: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 1, 1, 1}, weights)
	})

	t.Run("earliest bias", func(t *testing.T) {
		weights, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:     ShapeNonLinear,
			NonLinear: NonLinearSpec{C: 0.5, Bias: BiasEarliest},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{1, 0.5, 0.25}, weights, 1e-9)
	})

	t.Run("latest bias mirrors the curve", func(t *testing.T) {
		weights, err := Generate([]float64{0, 6, 12}, WeightSpec{
			Shape:     ShapeNonLinear,
			NonLinear: NonLinearSpec{C: 0.5, Bias: BiasLatest},
		})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0.25, 0.5, 1}, weights, 1e-9)
	})

	t.Run("empty points", func(t *testing.T) {
		_, err := Generate(nil, WeightSpec{
			Shape:     ShapeNonLinear,
			NonLinear: NonLinearSpec{C: DefaultNonLinearC},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
	})

	t.Run("factor out of range", func(t *testing.T) {
		for _, c := range []float64{0, -0.5, 1.5} {
			_, err := Generate([]float64{0, 6}, WeightSpec{
				Shape:     ShapeNonLinear,
				NonLinear: NonLinearSpec{C: c},
			})
			require.ErrorIs(t, err, cube.ErrConfiguration, "c=%g", c)
		}
	})

	t.Run("unknown bias", func(t *testing.T) {
		_, err := Generate([]float64{0, 6}, WeightSpec{
			Shape:     ShapeNonLinear,
			NonLinear: NonLinearSpec{C: 0.5, Bias: "sideways"},
		})
		require.ErrorIs(t, err, cube.ErrConfiguration)
	})
}

func TestGenerate_UnknownShape(t *testing.T) {
	_, err := Generate([]float64{0, 6}, WeightSpec{Shape: "parabolic"})
	require.ErrorIs(t, err, cube.ErrConfiguration)
}

func TestRedistribute(t *testing.T) {
	expected := []float64{0, 6, 12, 18}
	base := []float64{20, 14, 8, 2}

	t.Run("nothing missing returns base weights", func(t *testing.T) {
		out, err := Redistribute(expected, expected, base, RedistributeEvenly)
		require.NoError(t, err)
		assert.Equal(t, WeightMap{0: 20, 6: 14, 12: 8, 18: 2}, out)
	})

	t.Run("evenly", func(t *testing.T) {
		out, err := Redistribute(expected, []float64{0, 12}, base, RedistributeEvenly)
		require.NoError(t, err)
		// Missing mass 14+2=16 split as 8 each.
		assert.InDelta(t, 28, out[0], 1e-9)
		assert.InDelta(t, 16, out[12], 1e-9)
	})

	t.Run("proportional", func(t *testing.T) {
		out, err := Redistribute(expected, []float64{0, 12}, base, RedistributeProportional)
		require.NoError(t, err)
		// Missing mass 16 split 20:8 between the present points.
		assert.InDelta(t, 20+16*20.0/28.0, out[0], 1e-9)
		assert.InDelta(t, 8+16*8.0/28.0, out[12], 1e-9)
	})

	t.Run("mass is conserved", func(t *testing.T) {
		splits := [][]float64{{0}, {18}, {0, 6}, {6, 12, 18}, expected}
		for _, method := range []Method{RedistributeEvenly, RedistributeProportional} {
			for _, available := range splits {
				out, err := Redistribute(expected, available, base, method)
				require.NoError(t, err, "%s %v", method, available)
				assert.InDelta(t, 44, out.Sum(), 1e-9, "%s %v", method, available)
			}
		}
	})

	t.Run("no available points", func(t *testing.T) {
		_, err := Redistribute(expected, nil, base, RedistributeEvenly)
		require.ErrorIs(t, err, cube.ErrDomainMismatch)
	})

	t.Run("unexpected point", func(t *testing.T) {
		_, err := Redistribute(expected, []float64{0, 7}, base, RedistributeEvenly)
		require.ErrorIs(t, err, cube.ErrDomainMismatch)
		assert.Contains(t, err.Error(), "point 7")
	})

	t.Run("weight count mismatch", func(t *testing.T) {
		_, err := Redistribute(expected, expected, base[:2], RedistributeEvenly)
		require.ErrorIs(t, err, cube.ErrDomainMismatch)
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := Redistribute(expected, expected, base, "randomly")
		require.ErrorIs(t, err, cube.ErrConfiguration)
	})

	t.Run("proportional with zero present mass", func(t *testing.T) {
		_, err := Redistribute([]float64{0, 6}, []float64{6}, []float64{5, 0}, RedistributeProportional)
		require.ErrorIs(t, err, cube.ErrDomainMismatch)
	})
}
