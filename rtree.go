package openpl

import "github.com/dhconnelly/rtreego"

// rtreeMinBranch and rtreeMaxBranch are the rtreego branching-factor hints used for the per-Voxelise
// broad-phase index; values mirror rtreego's own defaults for small-to-medium
// trees.
const (
	rtreeMinBranch = 25
	rtreeMaxBranch = 50
)

// cellSpatial adapts a lattice cell's AABB to rtreego.Spatial so the lattice
// can be queried by mesh bounding boxes instead of scanned linearly.
type cellSpatial struct {
	index int
	rect  rtreego.Rect
}

func (c *cellSpatial) Bounds() rtreego.Rect { return c.rect }

func toRect(b AABB) (rtreego.Rect, error) {
	lengths := []float64{
		axisLength(b.Max.X - b.Min.X),
		axisLength(b.Max.Y - b.Min.Y),
		axisLength(b.Max.Z - b.Min.Z),
	}
	point := rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z}
	return rtreego.NewRect(point, lengths)
}

// axisLength guards against a degenerate (zero-thickness) axis, which rtreego
// rejects as an invalid rectangle.
func axisLength(l float64) float64 {
	const minAxis = 1e-9
	if l < minAxis {
		return minAxis
	}
	return l
}

// buildCellIndex inserts every lattice cell's AABB into an Rtree keyed by
// cell index, used as the voxeliser's broad-phase candidate-cell query.
func buildCellIndex(l *Lattice) (*rtreego.Rtree, error) {
	tree := rtreego.NewTree(3, rtreeMinBranch, rtreeMaxBranch)
	for i := range l.Cells {
		rect, err := toRect(l.cellBounds(i))
		if err != nil {
			return nil, err
		}
		tree.Insert(&cellSpatial{index: i, rect: rect})
	}
	return tree, nil
}

// candidateCells returns the indices of every lattice cell whose cube
// intersects meshBounds, via the Rtree broad phase.
func candidateCells(tree *rtreego.Rtree, meshBounds AABB) ([]int, error) {
	rect, err := toRect(meshBounds)
	if err != nil {
		return nil, err
	}
	hits := tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, s := range hits {
		out = append(out, s.(*cellSpatial).index)
	}
	return out, nil
}
