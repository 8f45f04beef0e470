package openpl

import (
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// sampleOffsets are the 9 sample points tested per candidate cell: the cell
// centre plus the eight corners at ±h/2 on every axis (spec.md §4.3 step 4).
func sampleOffsets(h float64) [9]Vector3 {
	half := h / 2
	return [9]Vector3{
		{0, 0, 0},
		{-half, -half, -half}, {half, -half, -half},
		{-half, half, -half}, {half, half, -half},
		{-half, -half, half}, {half, -half, half},
		{-half, half, half}, {half, half, half},
	}
}

// fillVoxels classifies every lattice cell as open air or solid wall by
// testing candidate cells against each mesh in turn, per spec.md §4.3. Later
// meshes overwrite earlier ones for a co-claimed cell (last-writer wins).
func fillVoxels(lattice *Lattice, meshes []*TriangleMesh) error {
	for i := range lattice.Cells {
		lattice.Cells[i].Beta = 1
		lattice.Cells[i].Absorptivity = 0
	}
	if len(meshes) == 0 {
		return nil
	}

	tree, err := buildCellIndex(lattice)
	if err != nil {
		return err
	}

	offsets := sampleOffsets(lattice.CellSize)

	for _, mesh := range meshes {
		meshBounds := mesh.Bounds()
		if !meshBounds.Intersects(lattice.Bounds) {
			continue
		}

		// Widen the query bounds by half a cell edge: a cell right at the
		// mesh boundary can still have a sample corner land inside the mesh
		// even when floating-point rounding makes its own AABB appear not
		// to touch meshBounds.
		candidates, err := candidateCells(tree, meshBounds.Expand(lattice.CellSize/2))
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			log.Printf("openpl: no candidate voxels found for a mesh inside the lattice bounds")
			continue
		}

		if err := classifyCandidates(lattice, mesh, candidates, offsets); err != nil {
			return err
		}
	}
	return nil
}

// classifyCandidates tests every candidate cell's 9-point sample set against
// mesh and marks cells solid when at least 3 samples land inside. Candidate
// cells are mutually independent, so the work is fanned out across
// runtime.NumCPU() goroutines via errgroup, mirroring the row-parallel
// fan-out the teacher uses for its own per-cell wave update.
func classifyCandidates(lattice *Lattice, mesh *TriangleMesh, candidates []int, offsets [9]Vector3) error {
	workers := runtime.NumCPU()
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (len(candidates) + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(candidates) {
			break
		}
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			samples := make([]Vector3, 9)
			for _, cellIdx := range candidates[start:end] {
				center := lattice.Cells[cellIdx].WorldPos
				for i, off := range offsets {
					samples[i] = center.Add(off)
				}
				flags := testPointsInMesh(mesh, samples)
				inside := 0
				for _, f := range flags {
					if f {
						inside++
					}
				}
				if inside >= 3 {
					lattice.Cells[cellIdx].Beta = 0
					lattice.Cells[cellIdx].Absorptivity = mesh.Absorptivity
				}
			}
			return nil
		})
	}
	return g.Wait()
}
