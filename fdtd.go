package openpl

import (
	"log"

	"golang.org/x/sync/errgroup"
)

// fdtdState is the six-parallel-array re-layout spec.md §9 calls a "lawful
// re-layout" of the per-cell voxel record: pressure and the three staggered
// velocity components, plus the static beta/absorptivity fields copied out
// of the lattice once at the start of a Simulate call. All arrays share the
// lattice's lexicographic flat index i = x + y*X + z*X*Y, and Vx[i]/Vy[i]/
// Vz[i] are read as the velocity on the face between cell i-1 and cell i
// along that axis — index 0 on any axis is therefore the domain's ghost
// face, never written by the velocity updates and zero unless set otherwise
// (absorbFaces overwrites vy at y=0 every step).
type fdtdState struct {
	x, y, z int

	pressure []float64
	vx       []float64
	vy       []float64
	vz       []float64

	beta         []float64
	absorptivity []float64
}

func newFDTDState(lattice *Lattice) *fdtdState {
	n := lattice.Count()
	s := &fdtdState{
		x: lattice.X, y: lattice.Y, z: lattice.Z,
		pressure: make([]float64, n),
		vx:       make([]float64, n),
		vy:       make([]float64, n),
		vz:       make([]float64, n),

		beta:         make([]float64, n),
		absorptivity: make([]float64, n),
	}
	for i, c := range lattice.Cells {
		s.beta[i] = c.Beta
		s.absorptivity[i] = c.Absorptivity
	}
	return s
}

func (s *fdtdState) index(x, y, z int) int { return x + y*s.x + z*s.x*s.y }

// stepPressure is sub-step 1: pressure from velocity divergence. A neighbour
// that would read past the lattice edge is treated as a zero-initialised
// ghost (spec.md §4.5 step 1).
func (s *fdtdState) stepPressure(k float64) {
	for zc := 0; zc < s.z; zc++ {
		for yc := 0; yc < s.y; yc++ {
			for xc := 0; xc < s.x; xc++ {
				i := s.index(xc, yc, zc)

				var vxNext, vyNext, vzNext float64
				if xc+1 < s.x {
					vxNext = s.vx[s.index(xc+1, yc, zc)]
				}
				if yc+1 < s.y {
					vyNext = s.vy[s.index(xc, yc+1, zc)]
				}
				if zc+1 < s.z {
					vzNext = s.vz[s.index(xc, yc, zc+1)]
				}

				div := (vxNext - s.vx[i]) + (vyNext - s.vy[i]) + (vzNext - s.vz[i])
				s.pressure[i] = s.beta[i] * (s.pressure[i] - k*div)
			}
		}
	}
}

// admittance is the locally-reactive boundary admittance Y = (1-α)/(1+α)
// relating pressure to normal velocity at a wall cell with absorption
// coefficient α (spec.md §9, "Unknown Y-coefficient" — preserved bit-exactly
// per that note).
func admittance(alpha float64) float64 {
	return (1 - alpha) / (1 + alpha)
}

// axisVelocityUpdate is the shared body of the three per-axis velocity
// updates (spec.md §4.5 step 2), applied to the face between a "prev" cell
// and a "this" cell along one axis.
func axisVelocityUpdate(k, pPrev, pThis, betaPrev, betaThis, absPrev, absThis, vThis float64) float64 {
	yNormal := admittance(absPrev)
	yTangent := admittance(absThis)

	grad := pThis - pPrev
	airUpdate := vThis - k*grad
	wallUpdate := (betaThis*yNormal + betaPrev*yTangent) * (pPrev*betaPrev + pThis*betaThis)

	return betaThis*betaPrev*airUpdate + (betaPrev-betaThis)*wallUpdate
}

// updateAxisX, updateAxisY and updateAxisZ update the interior faces along
// their axis (start index 1, per spec.md §4.5 step 2). They mutate disjoint
// arrays (vx, vy, vz) and read only pressure/beta/absorptivity, so the three
// may run concurrently — spec.md §5 states they are "mutually independent...
// may be reordered".
func (s *fdtdState) updateAxisX(k float64) {
	for zc := 0; zc < s.z; zc++ {
		for yc := 0; yc < s.y; yc++ {
			for xc := 1; xc < s.x; xc++ {
				i := s.index(xc, yc, zc)
				prev := s.index(xc-1, yc, zc)
				s.vx[i] = axisVelocityUpdate(k, s.pressure[prev], s.pressure[i], s.beta[prev], s.beta[i], s.absorptivity[prev], s.absorptivity[i], s.vx[i])
			}
		}
	}
}

func (s *fdtdState) updateAxisY(k float64) {
	for zc := 0; zc < s.z; zc++ {
		for yc := 1; yc < s.y; yc++ {
			for xc := 0; xc < s.x; xc++ {
				i := s.index(xc, yc, zc)
				prev := s.index(xc, yc-1, zc)
				s.vy[i] = axisVelocityUpdate(k, s.pressure[prev], s.pressure[i], s.beta[prev], s.beta[i], s.absorptivity[prev], s.absorptivity[i], s.vy[i])
			}
		}
	}
}

func (s *fdtdState) updateAxisZ(k float64) {
	for zc := 1; zc < s.z; zc++ {
		for yc := 0; yc < s.y; yc++ {
			for xc := 0; xc < s.x; xc++ {
				i := s.index(xc, yc, zc)
				prev := s.index(xc, yc, zc-1)
				s.vz[i] = axisVelocityUpdate(k, s.pressure[prev], s.pressure[i], s.beta[prev], s.beta[i], s.absorptivity[prev], s.absorptivity[i], s.vz[i])
			}
		}
	}
}

// stepVelocities runs the three axis updates concurrently.
func (s *fdtdState) stepVelocities(k float64) error {
	var g errgroup.Group
	g.Go(func() error { s.updateAxisX(k); return nil })
	g.Go(func() error { s.updateAxisY(k); return nil })
	g.Go(func() error { s.updateAxisZ(k); return nil })
	return g.Wait()
}

// absorbFaces is sub-step 3: the first-order Mur-style absorber on the two
// domain faces perpendicular to the Y axis (y=0 and y=Y-1).
//
// spec.md §9 flags the source's face-stride formulas
// (XSize*(ZSize+1)+i, i*(ZSize+1)) as inconsistent with the lexicographic
// index and asks implementers to derive the correct strides from first
// principles. Deriving from index(x,y,z) = x + y·X + z·X·Y: fixing y to a
// face value, the face is the set {x + y·X + z·X·Y | x ∈ [0,X), z ∈ [0,Z)}
// — stride 1 over x, stride X·Y over z, constant offset y·X. That is exactly
// what the nested loop below walks; no separate stride arithmetic is needed.
// The low face absorbs inbound energy as a negative-going wave, the high
// face as positive-going, matching the outward surface normal on each side.
func (s *fdtdState) absorbFaces() {
	for zc := 0; zc < s.z; zc++ {
		for xc := 0; xc < s.x; xc++ {
			lo := s.index(xc, 0, zc)
			s.vy[lo] = -s.pressure[lo]

			hi := s.index(xc, s.y-1, zc)
			s.vy[hi] = s.pressure[hi]
		}
	}
}

// snapshotInto copies the current dynamic + static state of every cell into
// buf, in lattice index order (spec.md §4.5 step 4).
func (s *fdtdState) snapshotInto(buf []VoxelCell) {
	for i := range buf {
		buf[i] = VoxelCell{
			Beta:         s.beta[i],
			Absorptivity: s.absorptivity[i],
			Pressure:     s.pressure[i],
			Vx:           s.vx[i],
			Vy:           s.vy[i],
			Vz:           s.vz[i],
		}
	}
}

// runFDTD runs the full T-step kernel described in spec.md §4.5 and returns
// the retained (cell, time) simulation grid. When useGPU is set, the
// pressure and velocity sub-steps run on an OpenCL device (fdtd_opencl.go);
// the absorbing-face pass, source injection and snapshot always run on the
// CPU, since they touch only a thin face or a single cell. If no OpenCL
// device is available (including every build without the opencl tag), the
// kernel logs once and falls back to the CPU path for the whole run.
//
// Step ordering follows the worked example in spec.md §8 scenario 4 rather
// than the bare numbered list in §4.5: that scenario requires the t=0
// snapshot to already reflect the pulse injected at t=0, so source
// injection runs before the snapshot copy, not after it.
func runFDTD(lattice *Lattice, sourceCell, steps int, compact, useGPU bool) (*SimulationGrid, error) {
	if lattice == nil {
		return nil, ErrGeneric
	}
	if sourceCell < 0 || sourceCell >= lattice.Count() {
		return nil, ErrInvalidParam
	}
	if steps <= 0 {
		return nil, ErrInvalidParam
	}

	consts := computeFDTDConstants()
	pulse := gaussianPulse(steps, consts)
	state := newFDTDState(lattice)
	grid := newSimulationGrid(lattice, steps, compact)

	var solver *openCLFDTDSolver
	if useGPU {
		var err error
		solver, err = newOpenCLFDTDSolver(lattice)
		if err != nil {
			log.Printf("openpl: OpenCL acceleration unavailable, falling back to CPU: %v", err)
			solver = nil
		} else {
			defer solver.Close()
			if err := solver.upload(state); err != nil {
				log.Printf("openpl: OpenCL upload failed, falling back to CPU: %v", err)
				solver.Close()
				solver = nil
			}
		}
	}

	buf := make([]VoxelCell, lattice.Count())
	for t := 0; t < steps; t++ {
		if solver != nil {
			if err := solver.step(state, consts.k); err != nil {
				return nil, err
			}
			if err := solver.sync(state); err != nil {
				return nil, err
			}
		} else {
			state.stepPressure(consts.k)
			if err := state.stepVelocities(consts.k); err != nil {
				return nil, err
			}
		}
		state.absorbFaces()
		state.pressure[sourceCell] += pulse[t]
		state.snapshotInto(buf)
		grid.writeStep(t, buf)

		if solver != nil {
			if err := solver.upload(state); err != nil {
				return nil, err
			}
		}
	}
	return grid, nil
}
