package openpl

// SimulationGrid is the retained (cell, time) history matrix produced by
// Simulate: entry (i,t) is the full voxel record at cell i at step t.
//
// Per spec.md §9's "Dense matrix storage vs indexable cell records" note, the
// dynamic fields (pressure, the three velocity components) may optionally be
// packed as float16 to cut memory for long simulations; Beta and
// Absorptivity never change once the voxeliser has run, so they are stored
// once per cell rather than duplicated per step even in non-compact mode —
// SimulationGrid.At reconstructs the full per-step VoxelCell record the spec
// calls for by pairing the dynamic snapshot with the static lattice fields.
type SimulationGrid struct {
	cells   int
	steps   int
	compact bool

	beta         []float64
	absorptivity []float64

	pressureF32 []float32
	vxF32       []float32
	vyF32       []float32
	vzF32       []float32

	pressureF16 []uint16
	vxF16       []uint16
	vyF16       []uint16
	vzF16       []uint16
}

// newSimulationGrid allocates a grid for the given cell count and step
// count. When compact is true, dynamic fields are packed as float16.
func newSimulationGrid(lattice *Lattice, steps int, compact bool) *SimulationGrid {
	n := lattice.Count()
	g := &SimulationGrid{cells: n, steps: steps, compact: compact, beta: make([]float64, n), absorptivity: make([]float64, n)}
	for i, c := range lattice.Cells {
		g.beta[i] = c.Beta
		g.absorptivity[i] = c.Absorptivity
	}
	if compact {
		g.pressureF16 = make([]uint16, n*steps)
		g.vxF16 = make([]uint16, n*steps)
		g.vyF16 = make([]uint16, n*steps)
		g.vzF16 = make([]uint16, n*steps)
	} else {
		g.pressureF32 = make([]float32, n*steps)
		g.vxF32 = make([]float32, n*steps)
		g.vyF32 = make([]float32, n*steps)
		g.vzF32 = make([]float32, n*steps)
	}
	return g
}

// sameShape reports whether g already matches lattice's cell count, the
// requested step count and the storage mode. runFDTD does not consult it:
// every Simulate call allocates a new grid.
func (g *SimulationGrid) sameShape(lattice *Lattice, steps int, compact bool) bool {
	return g != nil && g.cells == lattice.Count() && g.steps == steps && g.compact == compact
}

// Shape returns (N, T): cell count and time-step count.
func (g *SimulationGrid) Shape() (int, int) { return g.cells, g.steps }

// writeStep stores the dynamic fields of every cell for time step t.
func (g *SimulationGrid) writeStep(t int, cells []VoxelCell) {
	base := t * g.cells
	if g.compact {
		for i, c := range cells {
			g.pressureF16[base+i] = float32ToFloat16Bits(float32(c.Pressure))
			g.vxF16[base+i] = float32ToFloat16Bits(float32(c.Vx))
			g.vyF16[base+i] = float32ToFloat16Bits(float32(c.Vy))
			g.vzF16[base+i] = float32ToFloat16Bits(float32(c.Vz))
		}
		return
	}
	for i, c := range cells {
		g.pressureF32[base+i] = float32(c.Pressure)
		g.vxF32[base+i] = float32(c.Vx)
		g.vyF32[base+i] = float32(c.Vy)
		g.vzF32[base+i] = float32(c.Vz)
	}
}

// At reconstructs the full voxel record at cell i, time step t.
func (g *SimulationGrid) At(i, t int) VoxelCell {
	base := t*g.cells + i
	cell := VoxelCell{Beta: g.beta[i], Absorptivity: g.absorptivity[i]}
	if g.compact {
		cell.Pressure = float64(float16BitsToFloat32(g.pressureF16[base]))
		cell.Vx = float64(float16BitsToFloat32(g.vxF16[base]))
		cell.Vy = float64(float16BitsToFloat32(g.vyF16[base]))
		cell.Vz = float64(float16BitsToFloat32(g.vzF16[base]))
		return cell
	}
	cell.Pressure = float64(g.pressureF32[base])
	cell.Vx = float64(g.vxF32[base])
	cell.Vy = float64(g.vyF32[base])
	cell.Vz = float64(g.vzF32[base])
	return cell
}

// Pressure returns the pressure sample at cell i, time step t.
func (g *SimulationGrid) Pressure(i, t int) float64 {
	base := t*g.cells + i
	if g.compact {
		return float64(float16BitsToFloat32(g.pressureF16[base]))
	}
	return float64(g.pressureF32[base])
}
