package labeling

import (
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/scenekit/unrealdata/config"
	"github.com/scenekit/unrealdata/transform"
)

// timestampFormat is RFC 3339 at second precision, always UTC.
const timestampFormat = "2006-01-02T15:04:05Z"

// Generator assembles label records from scene observations. It is stateless apart
// from its collaborators and safe for concurrent use.
type Generator struct {
	registry *Registry
	clock    clock.Clock
	logger   golog.Logger
}

// NewGenerator returns a generator resolving classes against the given registry.
func NewGenerator(registry *Registry, logger golog.Logger) *Generator {
	return &Generator{registry: registry, clock: clock.New(), logger: logger}
}

// NewGeneratorWithClock is NewGenerator with an injected clock for deterministic
// timestamps in tests.
func NewGeneratorWithClock(registry *Registry, logger golog.Logger, c clock.Clock) *Generator {
	return &Generator{registry: registry, clock: c, logger: logger}
}

// GenerateLabels produces one capture's label record: per-object camera-space poses
// plus the intrinsics/extrinsics metadata of the capture. Object entries appear in
// input order and that order assigns instance ids. Configuration and geometry are
// validated before any matrix math; valid inputs cannot fail downstream.
func (g *Generator) GenerateLabels(
	objects []ObjectObservation,
	camera config.CameraConfig,
	output config.OutputConfig,
	sceneName string,
) (*LabelRecord, error) {
	if err := camera.Validate("camera"); err != nil {
		return nil, err
	}
	if err := output.Validate("output"); err != nil {
		return nil, err
	}
	for i := range objects {
		if err := objects[i].Validate(); err != nil {
			return nil, err
		}
	}

	width, height := output.ResolutionOrDefault()
	fov := camera.FOVOrDefault()

	extrinsics, err := transform.NewLookAtExtrinsics(camera.PositionVec(), camera.LookAtVec())
	if err != nil {
		return nil, err
	}
	intrinsics, err := transform.NewIntrinsicsFromFOV(fov, width, height)
	if err != nil {
		return nil, err
	}

	objectLabels := make([]ObjectLabel, 0, len(objects))
	for _, obj := range objects {
		classInfo := g.registry.ClassInfo(obj.ClassName)
		if classInfo.ID < 0 {
			g.logger.Warnw("unknown object class", "class_name", obj.ClassName, "label", obj.Label)
		}

		locationCamera := extrinsics.TransformPoint(config.Vec3(obj.LocationWorld))
		rotationY := extrinsics.HeadingInCamera(
			obj.RotationWorld[0], obj.RotationWorld[1], obj.RotationWorld[2],
			classInfo.OrientationAgnostic,
		)

		objectLabels = append(objectLabels, ObjectLabel{
			InstanceID:     len(objectLabels),
			ClassName:      obj.ClassName,
			ClassID:        classInfo.ID,
			LocationWorld:  obj.LocationWorld,
			LocationCamera: vecToSlice(locationCamera),
			Dimensions: Dimensions{
				Length: obj.Dimensions[0],
				Width:  obj.Dimensions[1],
				Height: obj.Dimensions[2],
			},
			RotationWorld: WorldRotation{
				Pitch: obj.RotationWorld[0],
				Yaw:   obj.RotationWorld[1],
				Roll:  obj.RotationWorld[2],
			},
			RotationYCamera:       rotationY,
			IsOrientationAgnostic: classInfo.OrientationAgnostic,
		})
	}

	record := &LabelRecord{
		Metadata: Metadata{
			SceneName:   sceneName,
			CaptureName: captureName(output.Filename),
			ImageFile:   output.Filename,
			CaptureID:   uuid.NewString(),
			Timestamp:   g.clock.Now().UTC().Format(timestampFormat),
		},
		Camera: CameraInfo{
			Intrinsics: IntrinsicsInfo{
				Fx:     intrinsics.Fx,
				Fy:     intrinsics.Fy,
				Cx:     intrinsics.Cx,
				Cy:     intrinsics.Cy,
				Width:  width,
				Height: height,
				K:      matToRows(intrinsics.CameraMatrix()),
			},
			Extrinsics: ExtrinsicsInfo{
				PositionWorld:  camera.Position,
				LookAtWorld:    camera.LookAt,
				RotationMatrix: matToRows(extrinsics.Rotation),
				Translation:    vecToSlice(extrinsics.Translation),
				TCameraWorld:   matToRows(extrinsics.Transform),
			},
			FOVDegrees: fov,
		},
		Objects: objectLabels,
	}

	g.logger.Debugw("generated labels",
		"scene", sceneName, "capture", record.Metadata.CaptureName, "objects", len(objectLabels))
	return record, nil
}

// captureName strips the image extension from the output filename.
func captureName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func vecToSlice(v r3.Vector) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func matToRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}
