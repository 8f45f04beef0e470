package openpl

// Scene owns one lattice, one simulation grid, the mesh list, the listener
// and source location lists, and the voxeliser worker, per spec.md §3. All
// list mutators are caller-thread-only; calling one while the voxeliser is
// Ongoing is undefined behaviour the caller is responsible for avoiding
// (spec.md §5).
type Scene struct {
	system *System

	meshes    []*TriangleMesh
	listeners []Vector3
	sources   []Vector3

	voxeliser *asyncVoxeliser
	lattice   *Lattice
	grid      *SimulationGrid
}

// AddAndConvertGameMesh ingests a world-space mesh (spec.md §4.4) and
// returns its stable index: the k-th successful call returns handle k.
func (sc *Scene) AddAndConvertGameMesh(position Vector3, rotation Quaternion, scale Vector3, vertices []Vector3, indices []int32, absorptivity float64) (int, error) {
	mesh, err := buildTriangleMesh(position, rotation, scale, vertices, indices, absorptivity)
	if err != nil {
		return 0, err
	}
	sc.meshes = append(sc.meshes, mesh)
	return len(sc.meshes) - 1, nil
}

// RemoveMesh removes the mesh at index i, shifting later indices down by
// one. An out-of-range index is a Generic error, not InvalidParam (spec.md
// §7).
func (sc *Scene) RemoveMesh(i int) error {
	if i < 0 || i >= len(sc.meshes) {
		return ErrGeneric
	}
	sc.meshes = append(sc.meshes[:i], sc.meshes[i+1:]...)
	return nil
}

// AddListenerLocation appends a listener point and returns its stable index.
func (sc *Scene) AddListenerLocation(v Vector3) int {
	sc.listeners = append(sc.listeners, v)
	return len(sc.listeners) - 1
}

// RemoveListenerLocation removes the listener at index i.
func (sc *Scene) RemoveListenerLocation(i int) error {
	if i < 0 || i >= len(sc.listeners) {
		return ErrGeneric
	}
	sc.listeners = append(sc.listeners[:i], sc.listeners[i+1:]...)
	return nil
}

// AddSourceLocation appends a source point and returns its stable index.
func (sc *Scene) AddSourceLocation(v Vector3) int {
	sc.sources = append(sc.sources, v)
	return len(sc.sources) - 1
}

// RemoveSourceLocation removes the source at index i.
func (sc *Scene) RemoveSourceLocation(i int) error {
	if i < 0 || i >= len(sc.sources) {
		return ErrGeneric
	}
	sc.sources = append(sc.sources[:i], sc.sources[i+1:]...)
	return nil
}

// Voxelise kicks off the async voxeliser (spec.md §4.7). Mesh-count and
// size validation both happen synchronously so InvalidParam/Generic are
// reported to the caller immediately, without needing to join the worker
// (spec.md §8 scenarios 2 and 3); only the lattice build and mesh fill
// itself run on the worker goroutine.
func (sc *Scene) Voxelise(center, extent Vector3, cellSize float64) error {
	if len(sc.meshes) == 0 {
		return ErrGeneric
	}
	if extent.X < cellSize || extent.Y < cellSize || extent.Z < cellSize {
		return ErrInvalidParam
	}

	meshes := append([]*TriangleMesh(nil), sc.meshes...)

	sc.voxeliser.start(func() (*Lattice, error) {
		lattice, err := newLattice(center, extent, cellSize)
		if err != nil {
			return nil, err
		}
		if err := fillVoxels(lattice, meshes); err != nil {
			return nil, err
		}
		return lattice, nil
	})
	return nil
}

// refreshLattice pulls the voxeliser's result into sc.lattice once it is no
// longer Ongoing. Never blocks: Finished means the worker's done channel is
// already closed, NotStarted returns immediately.
func (sc *Scene) refreshLattice() {
	if sc.voxeliser.getStatus() == statusOngoing {
		return
	}
	if lattice, err := sc.voxeliser.join(); err == nil && lattice != nil {
		sc.lattice = lattice
	}
}

// Simulate joins the voxeliser unconditionally, then runs the FDTD kernel
// for the given number of time steps, injecting the pulse at the first
// registered source location (spec.md §4.6).
func (sc *Scene) Simulate(steps int) error {
	lattice, err := sc.voxeliser.join()
	if err != nil {
		return err
	}
	if lattice == nil {
		return ErrGeneric
	}
	sc.lattice = lattice

	if len(sc.sources) == 0 {
		return ErrGeneric
	}
	sourceCell := lattice.nearestCellIndex(sc.sources[0])

	grid, err := runFDTD(lattice, sourceCell, steps, sc.system.compactHistory, sc.system.useOpenCL)
	if err != nil {
		return err
	}
	sc.grid = grid
	return nil
}

// GetVoxelsCount returns X*Y*Z, or 0 while the voxeliser is Ongoing (spec.md
// §4.6, §8 scenario 5).
func (sc *Scene) GetVoxelsCount() int {
	if sc.voxeliser.getStatus() == statusOngoing {
		return 0
	}
	sc.refreshLattice()
	if sc.lattice == nil {
		return 0
	}
	return sc.lattice.Count()
}

// GetVoxelLocation returns the world-space centre of cell i.
func (sc *Scene) GetVoxelLocation(i int) (Vector3, error) {
	if sc.voxeliser.getStatus() == statusOngoing {
		return Vector3{}, nil
	}
	sc.refreshLattice()
	if sc.lattice == nil || i < 0 || i >= sc.lattice.Count() {
		return Vector3{}, ErrInvalidParam
	}
	return sc.lattice.Cells[i].WorldPos, nil
}

// GetVoxelAbsorptivity returns the absorption coefficient of cell i.
func (sc *Scene) GetVoxelAbsorptivity(i int) (float64, error) {
	if sc.voxeliser.getStatus() == statusOngoing {
		return 0, nil
	}
	sc.refreshLattice()
	if sc.lattice == nil || i < 0 || i >= sc.lattice.Count() {
		return 0, ErrInvalidParam
	}
	return sc.lattice.Cells[i].Absorptivity, nil
}

// Grid returns the simulation grid produced by the most recent Simulate
// call, or nil if Simulate has not yet run.
func (sc *Scene) Grid() *SimulationGrid { return sc.grid }
