package openpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3Arithmetic(t *testing.T) {
	a := Vector3{X: 1, Y: 2, Z: 3}
	b := Vector3{X: 4, Y: 5, Z: 6}

	assert.Equal(t, Vector3{X: 5, Y: 7, Z: 9}, a.Add(b))
	assert.Equal(t, Vector3{X: -3, Y: -3, Z: -3}, a.Sub(b))
	assert.Equal(t, Vector3{X: 2, Y: 4, Z: 6}, a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
}

func TestAABBContainsIsInclusive(t *testing.T) {
	outer := newAABB(Vector3{}, Vector3{X: 10, Y: 10, Z: 10})
	inner := newAABB(Vector3{X: 1, Y: 1, Z: 1}, Vector3{X: 10, Y: 10, Z: 10})

	assert.True(t, outer.Contains(inner), "shared face should still count as contained")
}

func TestAABBIntersectsTouchingFaces(t *testing.T) {
	a := newAABB(Vector3{}, Vector3{X: 1, Y: 1, Z: 1})
	b := newAABB(Vector3{X: 1, Y: 0, Z: 0}, Vector3{X: 2, Y: 1, Z: 1})

	assert.True(t, a.Intersects(b), "boxes touching at a shared face should count as intersecting")

	c := newAABB(Vector3{X: 1.01, Y: 0, Z: 0}, Vector3{X: 2, Y: 1, Z: 1})
	assert.False(t, a.Intersects(c))
}

func TestAABBContainsPoint(t *testing.T) {
	b := newAABB(Vector3{}, Vector3{X: 2, Y: 2, Z: 2})
	assert.True(t, b.ContainsPoint(Vector3{X: 2, Y: 2, Z: 2}))
	assert.False(t, b.ContainsPoint(Vector3{X: 2.001, Y: 1, Z: 1}))
}

func TestQuaternionIdentityRotationIsNoOp(t *testing.T) {
	v := Vector3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, v, IdentityQuaternion.Rotate(v))
}

func TestQuaternionNormalizeZeroIsIdentity(t *testing.T) {
	q := Quaternion{}
	assert.Equal(t, IdentityQuaternion, q.Normalize())
}

func TestQuaternionRotate90DegreesAroundZ(t *testing.T) {
	// 90 degree rotation around +Z: (w,x,y,z) = (cos45, 0, 0, sin45).
	half := 0.70710678118
	q := Quaternion{W: half, Z: half}
	got := q.Rotate(Vector3{X: 1, Y: 0, Z: 0})

	assert.InDelta(t, 0, got.X, 1e-6)
	assert.InDelta(t, 1, got.Y, 1e-6)
	assert.InDelta(t, 0, got.Z, 1e-6)
}
