package transform

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// worldZUp is the default up vector for look-at cameras. Camera roll is not modeled.
var worldZUp = r3.Vector{X: 0, Y: 0, Z: 1}

// ConvWorldToCamera is the fixed change of basis from world axes to conventional
// camera axes, applied after the look-at basis is built:
//
//	camera X = world Y (right)
//	camera Y = -world Z (down)
//	camera Z = world X (forward)
//
// It is a constant of the system and must never be mutated or rederived ad hoc.
var ConvWorldToCamera = mat.NewDense(3, 3, []float64{
	0, 1, 0,
	0, 0, -1,
	1, 0, 0,
})

// a cross product below this norm means the inputs are parallel or zero
const degenerateNormEps = 1e-12

// Extrinsics is the rigid transform from world coordinates into the conventional
// camera frame: a 3x3 rotation R and a translation t = -R * position, along with
// the equivalent 4x4 homogeneous transform. R is orthonormal with determinant +1.
type Extrinsics struct {
	Position    r3.Vector // camera position, world frame
	LookAt      r3.Vector // look-at target, world frame
	Rotation    *mat.Dense
	Translation r3.Vector
	Transform   *mat.Dense
}

// NewLookAtExtrinsics computes the world-to-camera transform for a camera at the given
// world position looking at the given target, with the world Z axis as up.
func NewLookAtExtrinsics(position, lookAt r3.Vector) (*Extrinsics, error) {
	return NewLookAtExtrinsicsWithUp(position, lookAt, worldZUp)
}

// NewLookAtExtrinsicsWithUp is NewLookAtExtrinsics with an explicit up vector.
// It fails with a DegenerateGeometry error if the position equals the target or the
// viewing direction is parallel to up; the failure is detected before any matrix is
// assembled so NaNs never propagate downstream.
func NewLookAtExtrinsicsWithUp(position, lookAt, up r3.Vector) (*Extrinsics, error) {
	forward := lookAt.Sub(position)
	if forward.Norm() < degenerateNormEps {
		return nil, NewDegenerateGeometryError(
			"camera position %v equals look-at target, viewing direction undefined", position)
	}
	forward = forward.Normalize()

	right := forward.Cross(up)
	if right.Norm() < degenerateNormEps {
		return nil, NewDegenerateGeometryError(
			"viewing direction %v is parallel to the up vector %v", forward, up)
	}
	right = right.Normalize()
	trueUp := right.Cross(forward).Normalize()

	// World to engine-camera rotation. Rows follow the world axis convention
	// (X-forward, Y-right, Z-up) so that ConvWorldToCamera applies unchanged.
	engine := mat.NewDense(3, 3, []float64{
		forward.X, forward.Y, forward.Z,
		right.X, right.Y, right.Z,
		trueUp.X, trueUp.Y, trueUp.Z,
	})

	rotation := mat.NewDense(3, 3, nil)
	rotation.Mul(ConvWorldToCamera, engine)

	translation := rotateVector(rotation, position).Mul(-1)

	transform := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			transform.Set(i, j, rotation.At(i, j))
		}
	}
	transform.Set(0, 3, translation.X)
	transform.Set(1, 3, translation.Y)
	transform.Set(2, 3, translation.Z)
	transform.Set(3, 3, 1)

	return &Extrinsics{
		Position:    position,
		LookAt:      lookAt,
		Rotation:    rotation,
		Translation: translation,
		Transform:   transform,
	}, nil
}

// TransformPoint maps a world point into camera coordinates, p_camera = R*p + t.
func (e *Extrinsics) TransformPoint(pt r3.Vector) r3.Vector {
	return rotateVector(e.Rotation, pt).Add(e.Translation)
}

// RotateVector rotates a world direction into camera coordinates, without translation.
func (e *Extrinsics) RotateVector(v r3.Vector) r3.Vector {
	return rotateVector(e.Rotation, v)
}

// HeadingInCamera derives an object's heading angle in the camera frame from its world
// rotation, given as (pitch, yaw, roll) in degrees. Only yaw enters the computation;
// pitch and roll are assumed zero, which holds for upright objects. The heading is the
// angle of the object's forward direction measured from the camera's forward (Z) axis
// toward its right (X) axis, in (-pi, pi].
//
// Orientation-agnostic objects carry no meaningful heading and report exactly 0.
func (e *Extrinsics) HeadingInCamera(pitchDeg, yawDeg, rollDeg float64, orientationAgnostic bool) float64 {
	if orientationAgnostic {
		return 0.
	}
	yaw := yawDeg * math.Pi / 180.
	forwardWorld := r3.Vector{X: math.Cos(yaw), Y: math.Sin(yaw), Z: 0}
	forwardCamera := e.RotateVector(forwardWorld)
	return math.Atan2(forwardCamera.X, forwardCamera.Z)
}

func rotateVector(rot *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: rot.At(0, 0)*v.X + rot.At(0, 1)*v.Y + rot.At(0, 2)*v.Z,
		Y: rot.At(1, 0)*v.X + rot.At(1, 1)*v.Y + rot.At(1, 2)*v.Z,
		Z: rot.At(2, 0)*v.X + rot.At(2, 1)*v.Y + rot.At(2, 2)*v.Z,
	}
}
