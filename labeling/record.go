package labeling

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/scenekit/unrealdata/transform"
)

// labelsSubdir is the fixed subdirectory label files live in, beside the images.
const labelsSubdir = "labels"

// ObjectObservation is one spawned object's ground truth as reported by the scene:
// world pose, scale, and axis-aligned bounding dimensions in centimeters. Rotation is
// (pitch, yaw, roll) in degrees; dimensions are (length, width, height), the X/Y/Z
// extents in that order.
type ObjectObservation struct {
	Label         string    `json:"label"`
	ClassName     string    `json:"class_name"`
	LocationWorld []float64 `json:"location_world"`
	RotationWorld []float64 `json:"rotation_world"`
	Scale         []float64 `json:"scale"`
	Dimensions    []float64 `json:"dimensions"`
	BoundsCenter  []float64 `json:"bounds_center,omitempty"`
	BoundsExtent  []float64 `json:"bounds_extent,omitempty"`
}

// Validate ensures the observation's vectors have the right arity before any of them
// enters the projection math.
func (o *ObjectObservation) Validate() error {
	if len(o.LocationWorld) != 3 {
		return transform.NewInvalidConfigurationError(
			"object %q: location_world must have 3 components, got %d", o.Label, len(o.LocationWorld))
	}
	if len(o.RotationWorld) != 3 {
		return transform.NewInvalidConfigurationError(
			"object %q: rotation_world must have 3 components, got %d", o.Label, len(o.RotationWorld))
	}
	if len(o.Dimensions) != 3 {
		return transform.NewInvalidConfigurationError(
			"object %q: dimensions must have 3 components, got %d", o.Label, len(o.Dimensions))
	}
	if len(o.Scale) != 0 && len(o.Scale) != 3 {
		return transform.NewInvalidConfigurationError(
			"object %q: scale must have 3 components, got %d", o.Label, len(o.Scale))
	}
	return nil
}

// Metadata identifies one capture.
type Metadata struct {
	SceneName   string `json:"scene_name"`
	CaptureName string `json:"capture_name"`
	ImageFile   string `json:"image_file"`
	CaptureID   string `json:"capture_id"`
	Timestamp   string `json:"timestamp"`
}

// IntrinsicsInfo is the serialized intrinsics block of a label record.
type IntrinsicsInfo struct {
	Fx     float64     `json:"fx"`
	Fy     float64     `json:"fy"`
	Cx     float64     `json:"cx"`
	Cy     float64     `json:"cy"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	K      [][]float64 `json:"K"`
}

// ExtrinsicsInfo is the serialized extrinsics block of a label record.
type ExtrinsicsInfo struct {
	PositionWorld  []float64   `json:"position_world"`
	LookAtWorld    []float64   `json:"look_at_world"`
	RotationMatrix [][]float64 `json:"rotation_matrix"`
	Translation    []float64   `json:"translation"`
	TCameraWorld   [][]float64 `json:"T_camera_world"`
}

// CameraInfo is the camera block of a label record.
type CameraInfo struct {
	Intrinsics IntrinsicsInfo `json:"intrinsics"`
	Extrinsics ExtrinsicsInfo `json:"extrinsics"`
	FOVDegrees float64        `json:"fov_degrees"`
}

// Dimensions names an object's bounding extents. The mapping is positional: length is
// the X extent, width the Y extent, height the Z extent.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WorldRotation names an object's world rotation components in degrees.
type WorldRotation struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// ObjectLabel is one object's entry in a label record. Instance ids are assigned in
// input order, starting at 0.
type ObjectLabel struct {
	InstanceID            int           `json:"instance_id"`
	ClassName             string        `json:"class_name"`
	ClassID               int           `json:"class_id"`
	LocationWorld         []float64     `json:"location_world"`
	LocationCamera        []float64     `json:"location_camera"`
	Dimensions            Dimensions    `json:"dimensions"`
	RotationWorld         WorldRotation `json:"rotation_world"`
	RotationYCamera       float64       `json:"rotation_y_camera"`
	IsOrientationAgnostic bool          `json:"is_orientation_agnostic"`
}

// LabelRecord is one capture's full output: metadata, the camera geometry it was taken
// with, and one entry per visible object. It is owned by the generator for the duration
// of one capture and serialized once.
type LabelRecord struct {
	Metadata Metadata      `json:"metadata"`
	Camera   CameraInfo    `json:"camera"`
	Objects  []ObjectLabel `json:"objects"`
}

// SaveLabelRecord serializes a record as indented JSON under the labels subdirectory
// of outputDir, creating directories as needed, and returns the final path.
func SaveLabelRecord(record *LabelRecord, outputDir, filename string) (string, error) {
	labelsDir := filepath.Join(outputDir, labelsSubdir)
	if err := os.MkdirAll(labelsDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "error creating labels directory %q", labelsDir)
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "error serializing label record")
	}
	outPath := filepath.Join(labelsDir, filename)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "error writing label record to %q", outPath)
	}
	return outPath, nil
}

// LoadLabelRecord reads a record back from a JSON file. It is the exact inverse of
// SaveLabelRecord.
func LoadLabelRecord(path string) (*LabelRecord, error) {
	//nolint:gosec
	jsonFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening label record %q", path)
	}
	defer goutils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading label record")
	}
	record := &LabelRecord{}
	if err := json.Unmarshal(byteValue, record); err != nil {
		return nil, errors.Wrap(err, "error parsing label record")
	}
	return record, nil
}
