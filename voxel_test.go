package openpl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsotropicGridCountsCoversExtent(t *testing.T) {
	x, y, z := isotropicGridCounts(Vector3{X: 10, Y: 10, Z: 10}, 1)
	assert.Equal(t, 10, x)
	assert.Equal(t, 10, y)
	assert.Equal(t, 10, z)

	// 10/3 rounds up to ensure the counted cells actually cover the box.
	x, y, z = isotropicGridCounts(Vector3{X: 10, Y: 10, Z: 10}, 3)
	assert.Equal(t, 4, x)
	assert.Equal(t, 4, y)
	assert.Equal(t, 4, z)
}

func TestLatticeIndexCoordsRoundTrip(t *testing.T) {
	lattice, err := newLattice(Vector3{}, Vector3{X: 10, Y: 10, Z: 10}, 1)
	require.NoError(t, err)
	require.Equal(t, 1000, lattice.Count())

	for i := 0; i < lattice.Count(); i++ {
		x, y, z := lattice.coords(i)
		assert.Equal(t, i, lattice.index(x, y, z))
	}
}

func TestLatticeCellsAreCentredInBounds(t *testing.T) {
	lattice, err := newLattice(Vector3{}, Vector3{X: 10, Y: 10, Z: 10}, 1)
	require.NoError(t, err)

	for _, c := range lattice.Cells {
		assert.True(t, lattice.Bounds.ContainsPoint(c.WorldPos))
	}
}

func TestNewLatticeRejectsCellLargerThanDomain(t *testing.T) {
	_, err := newLattice(Vector3{}, Vector3{X: 1, Y: 1, Z: 1}, 2)
	assert.True(t, errors.Is(err, ErrInvalidParam))
}

func TestNewLatticeFreshCellsAreAirByDefault(t *testing.T) {
	lattice, err := newLattice(Vector3{}, Vector3{X: 2, Y: 2, Z: 2}, 1)
	require.NoError(t, err)
	for _, c := range lattice.Cells {
		assert.Equal(t, 1.0, c.Beta)
		assert.Equal(t, 0.0, c.Absorptivity)
	}
}

func TestNearestCellIndexClampsToBounds(t *testing.T) {
	lattice, err := newLattice(Vector3{}, Vector3{X: 10, Y: 10, Z: 10}, 1)
	require.NoError(t, err)

	centreIdx := lattice.nearestCellIndex(Vector3{})
	x, y, z := lattice.coords(centreIdx)
	assert.Equal(t, 5, x)
	assert.Equal(t, 5, y)
	assert.Equal(t, 5, z)

	// Far outside the domain still resolves to a valid, clamped index.
	idx := lattice.nearestCellIndex(Vector3{X: 1000, Y: 1000, Z: 1000})
	assert.True(t, idx >= 0 && idx < lattice.Count())
}
