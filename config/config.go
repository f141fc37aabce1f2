// Package config describes capture and scene configuration and validates it before
// any geometry math runs.
package config

import (
	"path/filepath"

	"github.com/golang/geo/r3"
	goutils "go.viam.com/utils"

	"github.com/scenekit/unrealdata/transform"
)

// Defaults applied when a config omits optional fields.
const (
	DefaultFOVDegrees = 90.0
	DefaultWidth      = 640
	DefaultHeight     = 640
)

// CameraConfig fully defines one capture's viewing geometry: where the camera sits,
// what it looks at, and its horizontal field of view. No camera roll is modeled.
type CameraConfig struct {
	Position []float64 `json:"position"`
	LookAt   []float64 `json:"look_at"`
	FOV      float64   `json:"fov,omitempty"`
}

// Validate ensures all parts of the config are valid. Violations of numeric ranges or
// vector arity are invalid-configuration errors, detected eagerly and never clamped.
func (c *CameraConfig) Validate(path string) error {
	if len(c.Position) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "position")
	}
	if len(c.Position) != 3 {
		return transform.NewInvalidConfigurationError("position must have 3 components, got %d", len(c.Position))
	}
	if len(c.LookAt) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "look_at")
	}
	if len(c.LookAt) != 3 {
		return transform.NewInvalidConfigurationError("look_at must have 3 components, got %d", len(c.LookAt))
	}
	if fov := c.FOVOrDefault(); fov <= 0. || fov >= 180. {
		return transform.NewInvalidConfigurationError("fov must be in (0, 180) degrees, got %v", fov)
	}
	return nil
}

// FOVOrDefault returns the configured horizontal field of view, or the default when unset.
func (c *CameraConfig) FOVOrDefault() float64 {
	if c.FOV == 0 {
		return DefaultFOVDegrees
	}
	return c.FOV
}

// PositionVec returns the camera position as a vector.
func (c *CameraConfig) PositionVec() r3.Vector {
	return Vec3(c.Position)
}

// LookAtVec returns the look-at target as a vector.
func (c *CameraConfig) LookAtVec() r3.Vector {
	return Vec3(c.LookAt)
}

// OutputConfig describes where a capture's image goes and at what resolution.
type OutputConfig struct {
	Filename   string `json:"filename"`
	Resolution []int  `json:"resolution,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (o *OutputConfig) Validate(path string) error {
	if o.Filename == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "filename")
	}
	if filepath.Ext(o.Filename) == "" {
		return transform.NewInvalidConfigurationError("filename %q has no image extension", o.Filename)
	}
	if len(o.Resolution) != 0 && len(o.Resolution) != 2 {
		return transform.NewInvalidConfigurationError("resolution must have 2 components, got %d", len(o.Resolution))
	}
	w, h := o.ResolutionOrDefault()
	if w <= 0 || h <= 0 {
		return transform.NewInvalidConfigurationError("resolution must be positive, got (%d, %d)", w, h)
	}
	return nil
}

// ResolutionOrDefault returns the configured width and height in pixels, or the
// defaults when unset.
func (o *OutputConfig) ResolutionOrDefault() (int, int) {
	if len(o.Resolution) == 2 {
		return o.Resolution[0], o.Resolution[1]
	}
	return DefaultWidth, DefaultHeight
}

// Vec3 converts a 3-element slice into a vector. Arity must be checked by Validate
// before conversion.
func Vec3(s []float64) r3.Vector {
	if len(s) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: s[0], Y: s[1], Z: s[2]}
}
