package openpl

import (
	"fmt"
	"math"
)

// VoxelCell is one lattice cell. WorldPos is set once at lattice
// construction and never mutated again; the remaining fields are mutated by
// the voxeliser (Beta, Absorptivity) and the FDTD kernel (Pressure, Vx, Vy,
// Vz).
type VoxelCell struct {
	WorldPos     Vector3
	Beta         float64 // rigidity: 1 = open air, 0 = solid wall
	Absorptivity float64 // wall absorption coefficient, 0 for air cells
	Pressure     float64
	Vx, Vy, Vz   float64
}

// Lattice is the voxel grid plus its metadata: bounds, per-axis extents, and
// the cubic cell edge length.
type Lattice struct {
	Bounds   AABB
	X, Y, Z  int
	CellSize float64
	Cells    []VoxelCell
}

// index maps (x,y,z) to the flat lexicographic index x + y*X + z*X*Y.
func (l *Lattice) index(x, y, z int) int {
	return x + y*l.X + z*l.X*l.Y
}

// Count returns X*Y*Z, equal to len(Cells).
func (l *Lattice) Count() int { return l.X * l.Y * l.Z }

// coords is the inverse of index.
func (l *Lattice) coords(i int) (x, y, z int) {
	xy := l.X * l.Y
	z = i / xy
	rem := i % xy
	y = rem / l.X
	x = rem % l.X
	return
}

// isotropicGridCounts returns the per-axis cell counts for an isotropic grid
// of edge length h spanning extent s, per spec.md §4.2: count ≈ floor(s/h),
// rounded up by one when needed so the counted cells actually cover the box.
// This mirrors the rounding behaviour implementers are asked to reproduce
// from the consumed "isotropic voxel grid" primitive (spec.md §6).
func isotropicGridCounts(extent Vector3, h float64) (x, y, z int) {
	axis := func(s float64) int {
		n := int(math.Floor(s / h))
		if n < 1 {
			n = 1
		}
		if float64(n)*h < s {
			n++
		}
		return n
	}
	return axis(extent.X), axis(extent.Y), axis(extent.Z)
}

// newLattice builds a lattice whose bounding box is [center-extent/2,
// center+extent/2], with per-axis counts from isotropicGridCounts. Cell
// centres are spaced extent/count apart along each axis: that spacing equals
// cellSize when cellSize divides the extent, and is smaller (and may differ
// per axis) when a count was rounded up. CellSize records the requested edge.
func newLattice(center, extent Vector3, cellSize float64) (*Lattice, error) {
	if extent.X < cellSize || extent.Y < cellSize || extent.Z < cellSize {
		return nil, fmt.Errorf("%w: cell size %g does not fit within extent (%g,%g,%g)", ErrInvalidParam, cellSize, extent.X, extent.Y, extent.Z)
	}

	half := extent.Scale(0.5)
	min := center.Sub(half)
	max := center.Add(half)
	bounds := newAABB(min, max)

	x, y, z := isotropicGridCounts(extent, cellSize)
	if x == 0 || y == 0 || z == 0 {
		return nil, fmt.Errorf("%w: degenerate lattice extent produced a zero axis count", ErrGeneric)
	}

	lattice := &Lattice{Bounds: bounds, X: x, Y: y, Z: z, CellSize: cellSize, Cells: make([]VoxelCell, x*y*z)}

	// Grid of cell-centre positions spanning the box exactly.
	stepX := extent.X / float64(x)
	stepY := extent.Y / float64(y)
	stepZ := extent.Z / float64(z)
	for k := 0; k < z; k++ {
		for j := 0; j < y; j++ {
			for i := 0; i < x; i++ {
				pos := Vector3{
					X: min.X + stepX*(float64(i)+0.5),
					Y: min.Y + stepY*(float64(j)+0.5),
					Z: min.Z + stepZ*(float64(k)+0.5),
				}
				lattice.Cells[lattice.index(i, j, k)] = VoxelCell{WorldPos: pos, Beta: 1, Absorptivity: 0}
			}
		}
	}
	return lattice, nil
}

// nearestCellIndex returns the index of the lattice cell whose centre is
// closest to p, clamped to the lattice bounds. Used to resolve a source or
// listener world-space location to the cell the FDTD kernel reads/writes.
func (l *Lattice) nearestCellIndex(p Vector3) int {
	clampAxis := func(v, min, step float64, n int) int {
		idx := int(math.Floor((v - min) / step))
		if idx < 0 {
			idx = 0
		}
		if idx > n-1 {
			idx = n - 1
		}
		return idx
	}
	stepX := (l.Bounds.Max.X - l.Bounds.Min.X) / float64(l.X)
	stepY := (l.Bounds.Max.Y - l.Bounds.Min.Y) / float64(l.Y)
	stepZ := (l.Bounds.Max.Z - l.Bounds.Min.Z) / float64(l.Z)

	x := clampAxis(p.X, l.Bounds.Min.X, stepX, l.X)
	y := clampAxis(p.Y, l.Bounds.Min.Y, stepY, l.Y)
	z := clampAxis(p.Z, l.Bounds.Min.Z, stepZ, l.Z)
	return l.index(x, y, z)
}

// cellBounds returns the AABB of the cell at lattice index i: centre ± h/2.
func (l *Lattice) cellBounds(i int) AABB {
	pos := l.Cells[i].WorldPos
	half := l.CellSize / 2
	m := Vector3{X: half, Y: half, Z: half}
	return newAABB(pos.Sub(m), pos.Add(m))
}
