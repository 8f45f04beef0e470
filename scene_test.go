package openpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndConvertGameMeshReturnsStableHandles(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()

	h0, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)
	h1, err := scene.AddAndConvertGameMesh(Vector3{X: 5}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, h0)
	assert.Equal(t, 1, h1)
	assert.Len(t, scene.meshes, 2)
}

func TestAddAndConvertGameMeshRejectsInvalidMesh(t *testing.T) {
	scene := NewSystem().NewScene()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, nil, nil, 0)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	assert.Len(t, scene.meshes, 0)
}

func TestRemoveMeshShiftsLaterIndicesDown(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0.1)
	require.NoError(t, err)
	_, err = scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0.2)
	require.NoError(t, err)

	require.NoError(t, scene.RemoveMesh(0))
	require.Len(t, scene.meshes, 1)
	assert.InDelta(t, 0.2, scene.meshes[0].Absorptivity, 1e-9)
}

func TestRemoveMeshOutOfRangeIsGeneric(t *testing.T) {
	scene := NewSystem().NewScene()
	assert.True(t, errors.Is(scene.RemoveMesh(0), ErrGeneric))
	assert.True(t, errors.Is(scene.RemoveMesh(-1), ErrGeneric))
}

func TestListenerAndSourceLocationRoundTrip(t *testing.T) {
	scene := NewSystem().NewScene()

	l0 := scene.AddListenerLocation(Vector3{X: 1})
	l1 := scene.AddListenerLocation(Vector3{X: 2})
	assert.Equal(t, 0, l0)
	assert.Equal(t, 1, l1)
	require.NoError(t, scene.RemoveListenerLocation(0))
	assert.Len(t, scene.listeners, 1)
	assert.True(t, errors.Is(scene.RemoveListenerLocation(5), ErrGeneric))

	s0 := scene.AddSourceLocation(Vector3{Y: 1})
	assert.Equal(t, 0, s0)
	require.NoError(t, scene.RemoveSourceLocation(0))
	assert.Len(t, scene.sources, 0)
	assert.True(t, errors.Is(scene.RemoveSourceLocation(0), ErrGeneric))
}

func TestVoxeliseRejectsWithNoMeshesAndNeverStartsTheWorker(t *testing.T) {
	scene := NewSystem().NewScene()
	err := scene.Voxelise(Vector3{}, Vector3{X: 4, Y: 4, Z: 4}, 1)
	assert.True(t, errors.Is(err, ErrGeneric))
	assert.Equal(t, statusNotStarted, scene.voxeliser.getStatus())
}

func TestVoxeliseRejectsCellLargerThanDomainAndNeverStartsTheWorker(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)

	err = scene.Voxelise(Vector3{}, Vector3{X: 1, Y: 1, Z: 1}, 2)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	assert.Equal(t, statusNotStarted, scene.voxeliser.getStatus())
}

func TestGetVoxelsCountIsZeroWhileOngoing(t *testing.T) {
	scene := NewSystem().NewScene()
	release := make(chan struct{})
	scene.voxeliser.start(func() (*Lattice, error) {
		<-release
		return newLattice(Vector3{}, Vector3{X: 2, Y: 2, Z: 2}, 1)
	})

	assert.Equal(t, 0, scene.GetVoxelsCount())

	close(release)
	_, err := scene.voxeliser.join()
	require.NoError(t, err)
	assert.Equal(t, 8, scene.GetVoxelsCount())
}

func TestGetVoxelLocationAndAbsorptivityAfterVoxelise(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 3, Y: 3, Z: 3}, verts, indices, 0.42)
	require.NoError(t, err)

	require.NoError(t, scene.Voxelise(Vector3{}, Vector3{X: 6, Y: 6, Z: 6}, 1))
	_, err = scene.voxeliser.join()
	require.NoError(t, err)

	n := scene.GetVoxelsCount()
	require.Greater(t, n, 0)

	loc, err := scene.GetVoxelLocation(0)
	require.NoError(t, err)
	assert.True(t, scene.lattice.Bounds.ContainsPoint(loc))

	_, err = scene.GetVoxelLocation(-1)
	assert.True(t, errors.Is(err, ErrInvalidParam))
	_, err = scene.GetVoxelLocation(n)
	assert.True(t, errors.Is(err, ErrInvalidParam))

	// The cell at the centre of the domain sits inside the mesh.
	centreIdx := scene.lattice.nearestCellIndex(Vector3{})
	absorptivity, err := scene.GetVoxelAbsorptivity(centreIdx)
	require.NoError(t, err)
	assert.Equal(t, 0.42, absorptivity)
}

func TestSimulateWithoutVoxeliseIsGeneric(t *testing.T) {
	scene := NewSystem().NewScene()
	err := scene.Simulate(10)
	assert.True(t, errors.Is(err, ErrGeneric))
}

func TestSimulateWithoutSourceLocationIsGeneric(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)
	require.NoError(t, scene.Voxelise(Vector3{}, Vector3{X: 4, Y: 4, Z: 4}, 1))

	err = scene.Simulate(10)
	assert.True(t, errors.Is(err, ErrGeneric))
}

func TestSimulateEndToEnd(t *testing.T) {
	scene := NewSystem().NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)

	scene.AddSourceLocation(Vector3{X: 2})
	require.NoError(t, scene.Voxelise(Vector3{}, Vector3{X: 5, Y: 5, Z: 5}, 1))

	require.NoError(t, scene.Simulate(3))

	grid := scene.Grid()
	require.NotNil(t, grid)
	n, steps := grid.Shape()
	assert.Equal(t, scene.GetVoxelsCount(), n)
	assert.Equal(t, 3, steps)
}

func TestSimulateUsesCompactHistoryWhenConfigured(t *testing.T) {
	scene := NewSystem(WithCompactHistory()).NewScene()
	verts, indices := unitBox()
	_, err := scene.AddAndConvertGameMesh(Vector3{}, IdentityQuaternion, Vector3{X: 1, Y: 1, Z: 1}, verts, indices, 0)
	require.NoError(t, err)
	scene.AddSourceLocation(Vector3{})
	require.NoError(t, scene.Voxelise(Vector3{}, Vector3{X: 4, Y: 4, Z: 4}, 1))
	require.NoError(t, scene.Simulate(2))

	assert.True(t, scene.Grid().compact)
}
