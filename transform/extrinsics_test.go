package transform

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

var lookAtCases = []struct {
	name     string
	position r3.Vector
	lookAt   r3.Vector
}{
	{"forward", r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 100, Y: 0, Z: 0}},
	{"offset", r3.Vector{X: 1000, Y: 500, Z: 200}, r3.Vector{X: 0, Y: 0, Z: 0}},
	{"oblique", r3.Vector{X: 500, Y: 300, Z: 200}, r3.Vector{X: 0, Y: 100, Z: 50}},
	{"behind", r3.Vector{X: -1000, Y: 300, Z: 400}, r3.Vector{X: 50, Y: 300, Z: 100}},
}

func TestLookAtRotationIsProper(t *testing.T) {
	for _, tc := range lookAtCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewLookAtExtrinsics(tc.position, tc.lookAt)
			test.That(t, err, test.ShouldBeNil)

			// R * R^T = I
			var rrt mat.Dense
			rrt.Mul(e.Rotation, e.Rotation.T())
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					want := 0.
					if i == j {
						want = 1.
					}
					test.That(t, rrt.At(i, j), test.ShouldAlmostEqual, want, 1e-10)
				}
			}

			// proper rotation, no reflection
			test.That(t, mat.Det(e.Rotation), test.ShouldAlmostEqual, 1., 1e-10)
		})
	}
}

func TestLookAtTransformInvariants(t *testing.T) {
	for _, tc := range lookAtCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewLookAtExtrinsics(tc.position, tc.lookAt)
			test.That(t, err, test.ShouldBeNil)

			// the camera maps to its own origin
			camInCamera := e.TransformPoint(tc.position)
			test.That(t, camInCamera.X, test.ShouldAlmostEqual, 0., 1e-9)
			test.That(t, camInCamera.Y, test.ShouldAlmostEqual, 0., 1e-9)
			test.That(t, camInCamera.Z, test.ShouldAlmostEqual, 0., 1e-9)

			// the world origin maps exactly to the translation component
			originInCamera := e.TransformPoint(r3.Vector{})
			test.That(t, originInCamera, test.ShouldResemble, e.Translation)

			// homogeneous bottom row
			for j, want := range []float64{0, 0, 0, 1} {
				test.That(t, e.Transform.At(3, j), test.ShouldEqual, want)
			}
		})
	}
}

func TestLookAtDegenerate(t *testing.T) {
	// position equals target
	_, err := NewLookAtExtrinsics(r3.Vector{X: 5, Y: 5, Z: 5}, r3.Vector{X: 5, Y: 5, Z: 5})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)

	// looking straight up and straight down along the up axis
	_, err = NewLookAtExtrinsics(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 0, Y: 0, Z: 100})
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
	_, err = NewLookAtExtrinsics(r3.Vector{X: 0, Y: 0, Z: 100}, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, errors.Is(err, ErrDegenerateGeometry), test.ShouldBeTrue)
}

func TestConvWorldToCameraBasis(t *testing.T) {
	rotate := func(v r3.Vector) r3.Vector {
		return rotateVector(ConvWorldToCamera, v)
	}
	// world forward maps to camera Z
	test.That(t, rotate(r3.Vector{X: 1}), test.ShouldResemble, r3.Vector{Z: 1})
	// world right maps to camera X
	test.That(t, rotate(r3.Vector{Y: 1}), test.ShouldResemble, r3.Vector{X: 1})
	// world up maps to camera -Y
	test.That(t, rotate(r3.Vector{Z: 1}), test.ShouldResemble, r3.Vector{Y: -1})
}

func TestTransformPointForward(t *testing.T) {
	e, err := NewLookAtExtrinsics(r3.Vector{}, r3.Vector{X: 100, Y: 0, Z: 0})
	test.That(t, err, test.ShouldBeNil)

	// a point dead ahead keeps its forward distance on camera Z
	pt := e.TransformPoint(r3.Vector{X: 100, Y: 0, Z: 0})
	test.That(t, pt.X, test.ShouldAlmostEqual, 0., 1e-9)
	test.That(t, pt.Y, test.ShouldAlmostEqual, 0., 1e-9)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 100., 1e-9)

	// a point above the camera appears up in the image (negative camera Y)
	pt = e.TransformPoint(r3.Vector{X: 100, Y: 0, Z: 50})
	test.That(t, pt.Y, test.ShouldAlmostEqual, -50., 1e-9)
	test.That(t, pt.Z, test.ShouldAlmostEqual, 100., 1e-9)
}

func TestHeadingInCamera(t *testing.T) {
	e, err := NewLookAtExtrinsics(r3.Vector{}, r3.Vector{X: 100, Y: 0, Z: 0})
	test.That(t, err, test.ShouldBeNil)

	// orientation-agnostic objects report literal zero no matter the rotation
	for _, yaw := range []float64{0, 45, 90, -135, 720} {
		test.That(t, e.HeadingInCamera(10, yaw, -20, true), test.ShouldEqual, 0.)
	}

	// an object facing the camera's forward direction has zero heading
	heading := e.HeadingInCamera(0, 0, 0, false)
	test.That(t, heading, test.ShouldAlmostEqual, 0., 1e-9)

	// an object facing away along world forward still has zero-magnitude X, pi heading
	heading = e.HeadingInCamera(0, 180, 0, false)
	test.That(t, math.Abs(heading), test.ShouldAlmostEqual, math.Pi, 1e-9)

	// heading stays in (-pi, pi]
	for _, yaw := range []float64{0, 30, 90, 179, 181, 270, 359} {
		heading := e.HeadingInCamera(0, yaw, 0, false)
		test.That(t, heading > -math.Pi && heading <= math.Pi+1e-12, test.ShouldBeTrue)
	}
}
