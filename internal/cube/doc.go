// Package cube models gridded forecast data as labelled n-dimensional arrays.
//
// # Layout
//
// A Cube stores its values as a flat row-major []float64: the last dimension
// varies fastest, so a cube with shape [3, 4] stores element (i, j) at
// Data[i*4+j]. Each dimension carries a Coordinate naming it, listing its
// ordered points, and recording its physical unit. Collapsed dimensions
// survive as scalar coordinates holding a single representative point.
//
// # Coordinate conventions
//
// Upstream producers normalize coordinate points to numeric units before a
// cube reaches this layer: forecast periods arrive as hours or seconds since
// the reference time, ensemble members as realization indices, and calendar
// times as seconds since the epoch. Points within one coordinate are unique,
// and their order defines the interpolation order used by weight generation.
//
// # Wire format
//
// Cubes travel as JSON, both on Kafka topics and in files written by the
// command-line tools. The envelope types RawMessage and OutputMessage carry
// the serialized form plus transport metadata; the payload schema is the
// Cube struct's JSON encoding.
//
// # Error kinds
//
// The post-processing core distinguishes three failure families, exposed as
// sentinel errors for errors.Is matching: ErrConfiguration for invalid or
// mutually exclusive parameters, ErrDomainMismatch for inputs that disagree
// with each other (a weight missing for a present point, an absent axis),
// and ErrData for malformed payloads. All are raised eagerly at the entry of
// the offending operation and never downgraded to defaults.
package cube
