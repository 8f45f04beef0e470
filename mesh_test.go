package openpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBox() ([]Vector3, []int32) {
	verts := []Vector3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: -0.5, Y: 0.5, Z: -0.5}, {X: 0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: -0.5, Y: 0.5, Z: 0.5}, {X: 0.5, Y: 0.5, Z: 0.5},
	}
	indices := []int32{
		0, 1, 3, 0, 3, 2,
		4, 6, 7, 4, 7, 5,
		0, 4, 5, 0, 5, 1,
		2, 3, 7, 2, 7, 6,
		0, 2, 6, 0, 6, 4,
		1, 5, 7, 1, 7, 3,
	}
	return verts, indices
}

func TestBuildTriangleMeshAppliesScaleThenRotateThenTranslate(t *testing.T) {
	verts, indices := unitBox()
	position := Vector3{X: 10, Y: 0, Z: 0}
	scale := Vector3{X: 2, Y: 1, Z: 1}

	mesh, err := buildTriangleMesh(position, IdentityQuaternion, scale, verts, indices, 0.5)
	require.NoError(t, err)

	v0 := mesh.vertexAt(0)
	assert.InDelta(t, 9, v0.X, 1e-9, "scale doubles X before translate shifts it")
	assert.InDelta(t, -0.5, v0.Y, 1e-9)
	assert.InDelta(t, -0.5, v0.Z, 1e-9)
}

func TestBuildTriangleMeshDefaultsAbsorptivity(t *testing.T) {
	verts, indices := unitBox()
	mesh, err := buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAbsorptivity, mesh.Absorptivity)
}

func TestBuildTriangleMeshValidation(t *testing.T) {
	verts, indices := unitBox()

	_, err := buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts[:3], indices, 0)
	assert.True(t, errors.Is(err, ErrInvalidParam), "fewer than 4 vertices")

	_, err = buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices[:3], 0)
	assert.True(t, errors.Is(err, ErrInvalidParam), "fewer than 4 indices")

	_, err = buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices[:10], 0)
	assert.True(t, errors.Is(err, ErrInvalidParam), "index count not a multiple of 3")

	badIndices := append([]int32(nil), indices...)
	badIndices[0] = 100
	_, err = buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, badIndices, 0)
	assert.True(t, errors.Is(err, ErrInvalidParam), "out-of-range vertex index")

	_, err = buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, nil, indices, 0)
	assert.True(t, errors.Is(err, ErrInvalidParam), "nil vertex slice")
}

func TestTriangleMeshBounds(t *testing.T) {
	verts, indices := unitBox()
	mesh, err := buildTriangleMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)

	b := mesh.Bounds()
	assert.Equal(t, Vector3{X: -0.5, Y: -0.5, Z: -0.5}, b.Min)
	assert.Equal(t, Vector3{X: 0.5, Y: 0.5, Z: 0.5}, b.Max)
}
