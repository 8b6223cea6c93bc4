package cube

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCube(t *testing.T) *Cube {
	t.Helper()
	c, err := New("air_temperature", "K", []Coordinate{
		{Name: "forecast_period", Points: []float64{0, 6, 12}, Unit: "hours"},
		{Name: "latitude", Points: []float64{50, 51}, Unit: "degrees"},
		{Name: "longitude", Points: []float64{-2, -1}, Unit: "degrees"},
	}, []float64{
		// forecast_period = 0
		280, 281,
		282, 283,
		// forecast_period = 6
		284, 285,
		286, 287,
		// forecast_period = 12
		288, 289,
		290, 291,
	})
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("valid cube", func(t *testing.T) {
		c := makeCube(t)
		assert.Equal(t, []int{3, 2, 2}, c.Shape())
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := New("t", "K", []Coordinate{
			{Name: "forecast_period", Points: []float64{0, 6}},
		}, []float64{1, 2, 3})
		require.ErrorIs(t, err, ErrData)
		assert.Contains(t, err.Error(), "3 values")
	})

	t.Run("duplicate points", func(t *testing.T) {
		_, err := New("t", "K", []Coordinate{
			{Name: "forecast_period", Points: []float64{6, 6}},
		}, []float64{1, 2})
		require.ErrorIs(t, err, ErrData)
		assert.Contains(t, err.Error(), "duplicate point 6")
	})

	t.Run("empty coordinate", func(t *testing.T) {
		_, err := New("t", "K", []Coordinate{
			{Name: "forecast_period", Points: nil},
		}, nil)
		require.ErrorIs(t, err, ErrData)
	})
}

func TestDecode(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		original := makeCube(t)
		payload, err := original.Encode()
		require.NoError(t, err)

		c, err := Decode(payload)
		require.NoError(t, err)
		if diff := cmp.Diff(original, c); diff != "" {
			t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Decode([]byte("not json{{{"))
		require.ErrorIs(t, err, ErrData)
	})

	t.Run("inconsistent shape", func(t *testing.T) {
		_, err := Decode([]byte(`{"name":"t","dims":[{"name":"x","points":[1,2]}],"data":[1]}`))
		require.ErrorIs(t, err, ErrData)
	})
}

func TestAxis(t *testing.T) {
	c := makeCube(t)

	i, ok := c.Axis("latitude")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = c.Axis("realization")
	assert.False(t, ok)
}

func TestMap(t *testing.T) {
	c := makeCube(t)
	out := c.Map(func(v float64) float64 { return v - 273.15 })

	assert.InDelta(t, 6.85, out.Data[0], 1e-9)
	assert.Equal(t, 280.0, c.Data[0], "input must not be mutated")
	assert.Equal(t, c.Shape(), out.Shape())
}

func TestCollapse(t *testing.T) {
	c := makeCube(t)

	mean := func(values []float64) float64 {
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	}

	t.Run("leading axis", func(t *testing.T) {
		out, err := c.Collapse(0, 6, mean)
		require.NoError(t, err)

		assert.Equal(t, []int{2, 2}, out.Shape())
		// Each location averages its three lead times: (280+284+288)/3 etc.
		assert.Equal(t, []float64{284, 285, 286, 287}, out.Data)

		require.Len(t, out.Scalars, 1)
		assert.Equal(t, "forecast_period", out.Scalars[0].Name)
		assert.Equal(t, []float64{6}, out.Scalars[0].Points)
		assert.Equal(t, "hours", out.Scalars[0].Unit)
	})

	t.Run("trailing axis", func(t *testing.T) {
		out, err := c.Collapse(2, -1.5, mean)
		require.NoError(t, err)

		assert.Equal(t, []int{3, 2}, out.Shape())
		assert.Equal(t, []float64{280.5, 282.5, 284.5, 286.5, 288.5, 290.5}, out.Data)
	})

	t.Run("input unchanged", func(t *testing.T) {
		_, err := c.Collapse(0, 6, mean)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 2}, c.Shape())
		assert.Equal(t, 280.0, c.Data[0])
	})

	t.Run("axis out of range", func(t *testing.T) {
		_, err := c.Collapse(5, 0, mean)
		require.ErrorIs(t, err, ErrDomainMismatch)
	})
}
