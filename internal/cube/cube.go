package cube

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Coordinate describes one labelled dimension: a name, the ordered points
// along it, and the physical unit the points are expressed in.
type Coordinate struct {
	Name   string    `json:"name"`
	Points []float64 `json:"points"`
	Unit   string    `json:"unit,omitempty"`
}

// Cube is a labelled n-dimensional array. Data is flat and row-major: the
// last dimension in Dims varies fastest. Scalars holds single-point
// coordinates left behind by collapsed dimensions.
type Cube struct {
	Name    string       `json:"name"`
	Unit    string       `json:"unit,omitempty"`
	Dims    []Coordinate `json:"dims"`
	Scalars []Coordinate `json:"scalar_coords,omitempty"`
	Data    []float64    `json:"data"`
}

// New builds a Cube and validates its shape: every dimension must have at
// least one point, point values within a dimension must be unique, and the
// product of dimension lengths must equal len(data).
func New(name, unit string, dims []Coordinate, data []float64) (*Cube, error) {
	size := 1
	for _, d := range dims {
		if len(d.Points) == 0 {
			return nil, fmt.Errorf("%w: coordinate %q has no points", ErrData, d.Name)
		}
		seen := make(map[float64]struct{}, len(d.Points))
		for _, p := range d.Points {
			if _, dup := seen[p]; dup {
				return nil, fmt.Errorf("%w: coordinate %q has duplicate point %g", ErrData, d.Name, p)
			}
			seen[p] = struct{}{}
		}
		size *= len(d.Points)
	}
	if size != len(data) {
		return nil, fmt.Errorf("%w: cube %q has %d values but its dimensions imply %d", ErrData, name, len(data), size)
	}
	return &Cube{Name: name, Unit: unit, Dims: dims, Data: data}, nil
}

// Decode unmarshals a cube from its JSON wire form and validates it.
func Decode(payload []byte) (*Cube, error) {
	var c Cube
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%w: decode cube: %v", ErrData, err)
	}
	return New(c.Name, c.Unit, c.Dims, c.Data)
}

// Encode marshals the cube to its JSON wire form.
func (c *Cube) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cube %q: %w", c.Name, err)
	}
	return data, nil
}

// Axis returns the index of the named dimension, or false if absent.
func (c *Cube) Axis(name string) (int, bool) {
	for i, d := range c.Dims {
		if d.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Shape returns the length of each dimension in order.
func (c *Cube) Shape() []int {
	shape := make([]int, len(c.Dims))
	for i, d := range c.Dims {
		shape[i] = len(d.Points)
	}
	return shape
}

// Map returns a new cube with the same dimensions whose values are f applied
// element-wise. The receiver is not modified.
func (c *Cube) Map(f func(float64) float64) *Cube {
	out := c.clone()
	for i, v := range c.Data {
		out.Data[i] = f(v)
	}
	return out
}

// Collapse removes the dimension at axis, reducing each run of values along
// it to a single value via reduce. The collapsed dimension is recorded as a
// scalar coordinate with the given point. The receiver is not modified.
//
// reduce receives the axis values for one remaining grid location in axis
// order; the slice is reused between calls and must not be retained.
func (c *Cube) Collapse(axis int, point float64, reduce func(values []float64) float64) (*Cube, error) {
	if axis < 0 || axis >= len(c.Dims) {
		return nil, fmt.Errorf("%w: cube %q has no dimension %d", ErrDomainMismatch, c.Name, axis)
	}

	axisLen := len(c.Dims[axis].Points)
	inner := 1
	for _, d := range c.Dims[axis+1:] {
		inner *= len(d.Points)
	}
	outer := len(c.Data) / (axisLen * inner)

	out := make([]float64, outer*inner)
	run := make([]float64, axisLen)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			base := o*axisLen*inner + i
			for k := 0; k < axisLen; k++ {
				run[k] = c.Data[base+k*inner]
			}
			out[o*inner+i] = reduce(run)
		}
	}

	collapsed := c.Dims[axis]
	dims := make([]Coordinate, 0, len(c.Dims)-1)
	dims = append(dims, c.Dims[:axis]...)
	dims = append(dims, c.Dims[axis+1:]...)

	scalars := slices.Clone(c.Scalars)
	scalars = append(scalars, Coordinate{Name: collapsed.Name, Points: []float64{point}, Unit: collapsed.Unit})

	return &Cube{Name: c.Name, Unit: c.Unit, Dims: dims, Scalars: scalars, Data: out}, nil
}

// clone copies the cube deeply enough that mutating the copy's data or
// scalar coordinates leaves the original untouched. Dimension coordinates
// are shared; callers treat them as immutable.
func (c *Cube) clone() *Cube {
	return &Cube{
		Name:    c.Name,
		Unit:    c.Unit,
		Dims:    c.Dims,
		Scalars: slices.Clone(c.Scalars),
		Data:    slices.Clone(c.Data),
	}
}
