// Command openpl-demo walks through the embedding API spec.md §6 describes:
// create a system and scene, ingest a mesh, voxelise, simulate, and print a
// summary of the resulting pressure field. It plays the role of the host
// engine the core library has no dependency on.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"openpl"
)

func main() {
	var (
		cellSize = flag.Float64("cell-size", 0.09, "lattice cell edge length (metres); must match the FDTD-derived dx for physically meaningful results")
		domain   = flag.Float64("domain", 4, "cubic domain edge length (metres)")
		steps    = flag.Int("steps", 64, "number of FDTD time steps to simulate")
		compact  = flag.Bool("compact", false, "retain the simulation grid as float16 instead of float32")
		gpu      = flag.Bool("opencl", false, "accelerate the FDTD kernel with OpenCL when available (requires building with -tags opencl)")
		profile  = flag.String("cpuprofile", "", "write a CPU profile to this path")
	)
	flag.Parse()

	if *profile != "" {
		stop, err := openpl.StartCPUProfile(*profile)
		if err != nil {
			log.Fatalf("starting CPU profile: %v", err)
		}
		defer stop()
	}

	var opts []openpl.SystemOption
	if *compact {
		opts = append(opts, openpl.WithCompactHistory())
	}
	if *gpu {
		opts = append(opts, openpl.WithOpenCLAcceleration())
	}
	system := openpl.NewSystem(opts...)
	scene := system.NewScene()

	if _, err := scene.AddAndConvertGameMesh(
		openpl.Vector3{},
		openpl.IdentityQuaternion,
		openpl.Vector3{X: 1, Y: 1, Z: 1},
		boxVertices(),
		boxIndices(),
		0,
	); err != nil {
		log.Fatalf("ingesting mesh: %v", err)
	}

	scene.AddSourceLocation(openpl.Vector3{})
	scene.AddListenerLocation(openpl.Vector3{X: *domain / 4})

	extent := openpl.Vector3{X: *domain, Y: *domain, Z: *domain}
	if err := scene.Voxelise(openpl.Vector3{}, extent, *cellSize); err != nil {
		log.Fatalf("voxelising: %v", err)
	}

	if err := scene.Simulate(*steps); err != nil {
		log.Fatalf("simulating: %v", err)
	}

	n := scene.GetVoxelsCount()
	fmt.Fprintf(os.Stdout, "lattice: %d voxels\n", n)

	grid := scene.Grid()
	sz, st := grid.Shape()
	fmt.Fprintf(os.Stdout, "simulation grid: %d cells x %d steps\n", sz, st)

	var peak float64
	for i := 0; i < n; i++ {
		for t := 0; t < st; t++ {
			if p := grid.Pressure(i, t); p > peak {
				peak = p
			}
		}
	}
	fmt.Fprintf(os.Stdout, "peak pressure observed: %g\n", peak)
}

// boxVertices returns the 8 corners of a unit cube centred on the origin.
func boxVertices() []openpl.Vector3 {
	out := make([]openpl.Vector3, 0, 8)
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-0.5, 0.5} {
			for _, z := range []float64{-0.5, 0.5} {
				out = append(out, openpl.Vector3{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

// boxIndices triangulates boxVertices' 8 corners (ordered x-major,
// y-mid, z-minor, i.e. index = 4*xi + 2*yi + zi) into 12 counter-clockwise
// triangles, one pair per face.
func boxIndices() []int32 {
	return []int32{
		// -X / +X faces
		0, 1, 3, 0, 3, 2,
		4, 6, 7, 4, 7, 5,
		// -Y / +Y faces
		0, 4, 5, 0, 5, 1,
		2, 3, 7, 2, 7, 6,
		// -Z / +Z faces
		0, 2, 6, 0, 6, 4,
		1, 5, 7, 1, 7, 3,
	}
}
