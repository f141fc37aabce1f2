package transform

import "github.com/pkg/errors"

// ErrInvalidConfiguration is when a camera or output configuration has values the
// projection math cannot accept.
var ErrInvalidConfiguration = errors.New("invalid camera configuration")

// ErrDegenerateGeometry is when a viewing geometry has no well defined camera basis.
var ErrDegenerateGeometry = errors.New("degenerate camera geometry")

// NewInvalidConfigurationError is used when a configuration value is out of range or malformed.
func NewInvalidConfigurationError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}

// NewDegenerateGeometryError is used when camera position, look-at target and up vector
// do not span a camera frame.
func NewDegenerateGeometryError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDegenerateGeometry, format, args...)
}
