// Package transform converts poses between the engine's world frame and a
// conventional pinhole camera frame.
//
// The world frame is the scene's native coordinate system: left-handed,
// X-forward, Y-right, Z-up, in centimeters. The camera frame is X-right,
// Y-down, Z-forward, the convention used by standard pinhole projection math.
package transform

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// PinholeIntrinsics holds the parameters necessary to do a perspective projection
// of a 3D scene to the 2D image plane.
type PinholeIntrinsics struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Cx     float64 `json:"cx"`
	Cy     float64 `json:"cy"`
}

// NewIntrinsicsFromFOV derives pinhole intrinsics from a horizontal field of view and
// an image resolution. The horizontal fov subtends the full image width at the focal
// plane, so fx = (width/2) / tan(fov/2). Pixels are assumed square (fy = fx) and the
// principal point sits exactly at the image center.
func NewIntrinsicsFromFOV(fovDegrees float64, width, height int) (*PinholeIntrinsics, error) {
	if fovDegrees <= 0. || fovDegrees >= 180. {
		return nil, NewInvalidConfigurationError("fov must be in (0, 180) degrees, got %v", fovDegrees)
	}
	if width <= 0 || height <= 0 {
		return nil, NewInvalidConfigurationError("resolution must be positive, got (%d, %d)", width, height)
	}
	fovRad := fovDegrees * math.Pi / 180.
	fx := (float64(width) / 2.) / math.Tan(fovRad/2.)
	return &PinholeIntrinsics{
		Width:  width,
		Height: height,
		Fx:     fx,
		Fy:     fx,
		Cx:     float64(width) / 2.,
		Cy:     float64(height) / 2.,
	}, nil
}

// NewIntrinsicsFromJSONFile takes in a file path to a JSON and turns it into PinholeIntrinsics.
func NewIntrinsicsFromJSONFile(jsonPath string) (*PinholeIntrinsics, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	intrinsics := &PinholeIntrinsics{}
	if err := json.Unmarshal(byteValue, intrinsics); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	return intrinsics, nil
}

// CheckValid checks if the fields for PinholeIntrinsics have valid inputs.
func (params *PinholeIntrinsics) CheckValid() error {
	if params == nil {
		return NewInvalidConfigurationError("intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewInvalidConfigurationError("invalid size (%d, %d)", params.Width, params.Height)
	}
	if params.Fx <= 0 {
		return NewInvalidConfigurationError("invalid focal length Fx = %v", params.Fx)
	}
	if params.Fy <= 0 {
		return NewInvalidConfigurationError("invalid focal length Fy = %v", params.Fy)
	}
	if params.Cx < 0 {
		return NewInvalidConfigurationError("invalid principal point Cx = %v", params.Cx)
	}
	if params.Cy < 0 {
		return NewInvalidConfigurationError("invalid principal point Cy = %v", params.Cy)
	}
	return nil
}

// CameraMatrix creates the intrinsic matrix and returns it.
// Camera matrix:
// [[fx 0 cx],
//
//	[0 fy cy],
//	[0 0  1]]
func (params *PinholeIntrinsics) CameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Cx)
	cameraMatrix.Set(1, 2, params.Cy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// PointToPixel projects a 3D point in camera coordinates to a pixel in the image plane.
// A point at or behind the camera plane (z <= 0) is not visible and projects to the
// (NaN, NaN) sentinel, which survives the numeric-only label schema; callers that need
// pixel coordinates must check for NaN. This is not an error condition.
func (params *PinholeIntrinsics) PointToPixel(x, y, z float64) (float64, float64) {
	if z <= 0. {
		return math.NaN(), math.NaN()
	}
	u := (x/z)*params.Fx + params.Cx
	v := (y/z)*params.Fy + params.Cy
	return u, v
}

// ProjectPoint is the explicit-visibility form of PointToPixel: the boolean reports
// whether the point is in front of the camera plane.
func (params *PinholeIntrinsics) ProjectPoint(pt r3.Vector) (r2.Point, bool) {
	if pt.Z <= 0. {
		return r2.Point{}, false
	}
	u, v := params.PointToPixel(pt.X, pt.Y, pt.Z)
	return r2.Point{X: u, Y: v}, true
}
