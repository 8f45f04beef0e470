package openpl

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// indexMatrix is a dense (3, Nt) column-major matrix of vertex indices.
// gonum's mat.Dense only stores float64, so index data (which must remain
// exact, never rounded) gets its own minimal dense type instead of a lossy
// round-trip through mat.Dense.
type indexMatrix struct {
	cols int
	data []int32 // column j occupies data[3*j : 3*j+3]
}

func newIndexMatrix(triangleCount int) *indexMatrix {
	return &indexMatrix{cols: triangleCount, data: make([]int32, 3*triangleCount)}
}

func (m *indexMatrix) set(col, row int, v int32) { m.data[3*col+row] = v }

func (m *indexMatrix) at(col, row int) int32 { return m.data[3*col+row] }

// TriangleMesh is a world-space triangle mesh: a (3, Nv) vertex matrix and a
// (3, Nt) triangle-index matrix, both column-major (column i holds vertex i's
// xyz, or triangle j's three vertex indices).
type TriangleMesh struct {
	Vertices     *mat.Dense // shape (3, Nv)
	Indices      *indexMatrix
	Absorptivity float64 // wall absorption coefficient applied when this mesh's cells go solid
}

// VertexCount returns Nv.
func (m *TriangleMesh) VertexCount() int {
	_, nv := m.Vertices.Dims()
	return nv
}

// TriangleCount returns Nt.
func (m *TriangleMesh) TriangleCount() int { return m.Indices.cols }

func (m *TriangleMesh) vertexAt(i int) Vector3 {
	return Vector3{X: m.Vertices.At(0, i), Y: m.Vertices.At(1, i), Z: m.Vertices.At(2, i)}
}

func (m *TriangleMesh) triangleVertices(t int) (a, b, c Vector3) {
	return m.vertexAt(int(m.Indices.at(t, 0))),
		m.vertexAt(int(m.Indices.at(t, 1))),
		m.vertexAt(int(m.Indices.at(t, 2)))
}

// Bounds computes the mesh AABB from V's per-row min/max.
func (m *TriangleMesh) Bounds() AABB {
	nv := m.VertexCount()
	min := m.vertexAt(0)
	max := min
	for i := 1; i < nv; i++ {
		v := m.vertexAt(i)
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	return newAABB(min, max)
}

// DefaultAbsorptivity is the wall absorption coefficient applied to a solid
// voxel when mesh ingestion does not request a specific material value.
// Mirrors the 0.75 placeholder the original implementation hard-coded.
const DefaultAbsorptivity = 0.75

// buildTriangleMesh validates and transforms raw ingestion inputs into a
// TriangleMesh, per spec.md §4.4. Transform order is translate(P) *
// rotate(Q) * scale(S) applied to each vertex, i.e. scale first, then
// rotate, then translate.
func buildTriangleMesh(position Vector3, rotation Quaternion, scale Vector3, vertices []Vector3, indices []int32, absorptivity float64) (*TriangleMesh, error) {
	nv := len(vertices)
	ni := len(indices)
	if vertices == nil || indices == nil {
		return nil, fmt.Errorf("%w: nil vertex or index slice", ErrInvalidParam)
	}
	if nv < 4 {
		return nil, fmt.Errorf("%w: mesh needs at least 4 vertices, got %d", ErrInvalidParam, nv)
	}
	if ni < 4 {
		return nil, fmt.Errorf("%w: mesh needs at least 4 indices, got %d", ErrInvalidParam, ni)
	}
	if ni%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrInvalidParam, ni)
	}

	vertexData := make([]float64, 3*nv)
	for i, v := range vertices {
		transformed := rotation.Rotate(Vector3{X: v.X * scale.X, Y: v.Y * scale.Y, Z: v.Z * scale.Z}).Add(position)
		vertexData[3*i+0] = transformed.X
		vertexData[3*i+1] = transformed.Y
		vertexData[3*i+2] = transformed.Z
	}
	// mat.Dense is row-major internally; arranging as (3, Nv) requires
	// filling by column, so build via Set rather than the flat (rows*cols)
	// constructor form.
	vertexMat := mat.NewDense(3, nv, nil)
	for i := 0; i < nv; i++ {
		vertexMat.Set(0, i, vertexData[3*i+0])
		vertexMat.Set(1, i, vertexData[3*i+1])
		vertexMat.Set(2, i, vertexData[3*i+2])
	}

	triCount := ni / 3
	idx := newIndexMatrix(triCount)
	for t := 0; t < triCount; t++ {
		for row := 0; row < 3; row++ {
			v := indices[3*t+row]
			if v < 0 || int(v) >= nv {
				return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrInvalidParam, v, nv)
			}
			idx.set(t, row, v)
		}
	}

	if absorptivity <= 0 {
		absorptivity = DefaultAbsorptivity
	}
	return &TriangleMesh{Vertices: vertexMat, Indices: idx, Absorptivity: absorptivity}, nil
}
