package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
)

// ObjectSpawnConfig describes one object to spawn into the scene.
type ObjectSpawnConfig struct {
	Type                  string    `json:"type"`
	Mesh                  string    `json:"mesh"`
	Position              []float64 `json:"position"`
	Rotation              []float64 `json:"rotation,omitempty"`
	Scale                 []float64 `json:"scale,omitempty"`
	Color                 string    `json:"color,omitempty"`
	Material              string    `json:"material,omitempty"`
	Label                 string    `json:"label,omitempty"`
	ClassName             string    `json:"class_name,omitempty"`
	IsOrientationAgnostic bool      `json:"is_orientation_agnostic,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (o *ObjectSpawnConfig) Validate(path string) error {
	if o.Type == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "type")
	}
	if o.Mesh == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "mesh")
	}
	if len(o.Position) != 3 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("position must have 3 components, got %d", len(o.Position)))
	}
	if len(o.Rotation) != 0 && len(o.Rotation) != 3 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("rotation must have 3 components, got %d", len(o.Rotation)))
	}
	if len(o.Scale) != 0 && len(o.Scale) != 3 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("scale must have 3 components, got %d", len(o.Scale)))
	}
	return nil
}

// SetDefaults fills in the optional fields the editor expects on every spawn request.
func (o *ObjectSpawnConfig) SetDefaults() {
	if len(o.Rotation) == 0 {
		o.Rotation = []float64{0, 0, 0}
	}
	if len(o.Scale) == 0 {
		o.Scale = []float64{1, 1, 1}
	}
	if o.Label == "" && o.Type != "" {
		o.Label = strings.ToUpper(o.Type[:1]) + o.Type[1:]
	}
}

// ScenePlacement positions the viewport camera after scene setup.
type ScenePlacement struct {
	Position []float64 `json:"position"`
	Target   []float64 `json:"target"`
	FOV      float64   `json:"fov,omitempty"`
}

// SceneConfig is one scene description file: a named set of objects to spawn and an
// optional initial camera placement.
type SceneConfig struct {
	Name    string              `json:"name"`
	Objects []ObjectSpawnConfig `json:"objects"`
	Camera  *ScenePlacement     `json:"camera,omitempty"`
}

// Validate ensures all parts of the config are valid and fills in spawn defaults.
func (c *SceneConfig) Validate() error {
	if c.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError("", "name")
	}
	var allErrs error
	for i := range c.Objects {
		if err := c.Objects[i].Validate(fmt.Sprintf("objects.%d", i)); err != nil {
			allErrs = multierr.Append(allErrs, err)
			continue
		}
		c.Objects[i].SetDefaults()
	}
	return allErrs
}

// ReadSceneConfig reads a scene description from a JSON file, substituting
// ${ENV_VAR} references in the raw bytes before decoding.
func ReadSceneConfig(filePath string) (*SceneConfig, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading scene config %q", filePath)
	}
	cfg := &SceneConfig{}
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(err, "error parsing scene config %q", filePath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
