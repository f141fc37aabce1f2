package transform

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewIntrinsicsFromFOV(t *testing.T) {
	// tan(45 deg) = 1, so focal length equals half the width exactly
	params, err := NewIntrinsicsFromFOV(90., 640, 640)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.Fx, test.ShouldEqual, 320.)
	test.That(t, params.Fy, test.ShouldEqual, 320.)
	test.That(t, params.Cx, test.ShouldEqual, 320.)
	test.That(t, params.Cy, test.ShouldEqual, 320.)
	test.That(t, params.Width, test.ShouldEqual, 640)
	test.That(t, params.Height, test.ShouldEqual, 640)

	params, err = NewIntrinsicsFromFOV(60., 640, 480)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.Fx, test.ShouldAlmostEqual, 320./math.Tan(30.*math.Pi/180.), 1e-9)
	test.That(t, params.Fy, test.ShouldEqual, params.Fx)
	test.That(t, params.Cx, test.ShouldEqual, 320.)
	test.That(t, params.Cy, test.ShouldEqual, 240.)
}

func TestNewIntrinsicsFromFOVInvalid(t *testing.T) {
	for _, fov := range []float64{0., -10., 180., 200.} {
		_, err := NewIntrinsicsFromFOV(fov, 640, 640)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	}
	_, err := NewIntrinsicsFromFOV(90., 0, 640)
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
	_, err = NewIntrinsicsFromFOV(90., 640, -480)
	test.That(t, errors.Is(err, ErrInvalidConfiguration), test.ShouldBeTrue)
}

func TestCameraMatrix(t *testing.T) {
	params, err := NewIntrinsicsFromFOV(90., 640, 480)
	test.That(t, err, test.ShouldBeNil)
	k := params.CameraMatrix()
	rows, cols := k.Dims()
	test.That(t, rows, test.ShouldEqual, 3)
	test.That(t, cols, test.ShouldEqual, 3)
	test.That(t, k.At(0, 0), test.ShouldEqual, params.Fx)
	test.That(t, k.At(1, 1), test.ShouldEqual, params.Fy)
	test.That(t, k.At(0, 2), test.ShouldEqual, params.Cx)
	test.That(t, k.At(1, 2), test.ShouldEqual, params.Cy)
	test.That(t, k.At(2, 2), test.ShouldEqual, 1.)
	test.That(t, k.At(1, 0), test.ShouldEqual, 0.)
}

func TestPointToPixel(t *testing.T) {
	params, err := NewIntrinsicsFromFOV(90., 640, 640)
	test.That(t, err, test.ShouldBeNil)

	// a point on the optical axis lands exactly on the principal point
	u, v := params.PointToPixel(0, 0, 100)
	test.That(t, u, test.ShouldEqual, params.Cx)
	test.That(t, v, test.ShouldEqual, params.Cy)

	u, v = params.PointToPixel(50, -25, 100)
	test.That(t, u, test.ShouldAlmostEqual, 320.+320.*0.5, 1e-9)
	test.That(t, v, test.ShouldAlmostEqual, 320.-320.*0.25, 1e-9)

	// behind the camera plane is not visible, not an error
	u, v = params.PointToPixel(10, 10, 0)
	test.That(t, math.IsNaN(u), test.ShouldBeTrue)
	test.That(t, math.IsNaN(v), test.ShouldBeTrue)
	u, v = params.PointToPixel(10, 10, -5)
	test.That(t, math.IsNaN(u), test.ShouldBeTrue)
	test.That(t, math.IsNaN(v), test.ShouldBeTrue)
}

func TestProjectPoint(t *testing.T) {
	params, err := NewIntrinsicsFromFOV(90., 640, 640)
	test.That(t, err, test.ShouldBeNil)

	pt, visible := params.ProjectPoint(r3.Vector{X: 0, Y: 0, Z: 250})
	test.That(t, visible, test.ShouldBeTrue)
	test.That(t, pt.X, test.ShouldEqual, 320.)
	test.That(t, pt.Y, test.ShouldEqual, 320.)

	_, visible = params.ProjectPoint(r3.Vector{X: 0, Y: 0, Z: -250})
	test.That(t, visible, test.ShouldBeFalse)
}

func TestNewIntrinsicsFromJSONFile(t *testing.T) {
	want, err := NewIntrinsicsFromFOV(90., 640, 480)
	test.That(t, err, test.ShouldBeNil)
	data, err := json.Marshal(want)
	test.That(t, err, test.ShouldBeNil)
	jsonPath := filepath.Join(t.TempDir(), "intrinsics.json")
	test.That(t, os.WriteFile(jsonPath, data, 0o644), test.ShouldBeNil)

	got, err := NewIntrinsicsFromJSONFile(jsonPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, want)

	_, err = NewIntrinsicsFromJSONFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}
