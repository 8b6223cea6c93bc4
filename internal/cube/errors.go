package cube

import "errors"

var (
	// ErrConfiguration marks invalid, missing, or mutually exclusive
	// parameters supplied by the caller or the configuration layer.
	ErrConfiguration = errors.New("configuration error")

	// ErrDomainMismatch marks inputs that are individually valid but
	// inconsistent with each other, such as a weight map that does not
	// cover every coordinate point present in a cube.
	ErrDomainMismatch = errors.New("domain mismatch")

	// ErrData marks malformed payloads: undecodable cube JSON, a
	// non-numeric threshold-configuration key, an unknown unit.
	ErrData = errors.New("data error")
)
