package openpl

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion is a rotation, used once per mesh to build its world-from-local
// transform. It wraps gonum's r3.Rotation the same way Vector3 wraps r3.Vec
// (geometry.go) — the same quaternion type soypat-sdf's internal/d3 package
// takes as the rotation argument to ComposeTransform.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

func (q Quaternion) rotation() r3.Rotation {
	return r3.Rotation{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromRotation(r r3.Rotation) Quaternion {
	return Quaternion{W: r.Real, X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Normalize returns q scaled to unit length. A zero quaternion normalizes to
// the identity rather than dividing by zero.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return IdentityQuaternion
	}
	return fromRotation(r3.Rotation{Real: q.W / n, Imag: q.X / n, Jmag: q.Y / n, Kmag: q.Z / n})
}

// Rotate applies q to v via gonum's r3.Rotation.Rotate.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	return fromVec(q.Normalize().rotation().Rotate(v.vec()))
}
