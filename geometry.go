package openpl

import "gonum.org/v1/gonum/spatial/r3"

// Vector3 is a three-component double-precision world-space vector, in
// metres. The core performs no unit conversion.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromVec(v r3.Vec) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

// Add returns v + other.
func (v Vector3) Add(other Vector3) Vector3 { return fromVec(r3.Add(v.vec(), other.vec())) }

// Sub returns v - other.
func (v Vector3) Sub(other Vector3) Vector3 { return fromVec(r3.Sub(v.vec(), other.vec())) }

// Scale returns v scaled component-wise by s.
func (v Vector3) Scale(s float64) Vector3 { return fromVec(r3.Scale(s, v.vec())) }

// Dot returns the dot product of v and other.
func (v Vector3) Dot(other Vector3) float64 { return r3.Dot(v.vec(), other.vec()) }

// cross returns the cross product a x b.
func cross(a, b Vector3) Vector3 { return fromVec(r3.Cross(a.vec(), b.vec())) }

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max Vector3
}

func newAABB(min, max Vector3) AABB { return AABB{Min: min, Max: max} }

// Contains reports whether other lies entirely within b. Containment is
// inclusive of shared faces.
func (b AABB) Contains(other AABB) bool {
	return other.Min.X >= b.Min.X && other.Min.Y >= b.Min.Y && other.Min.Z >= b.Min.Z &&
		other.Max.X <= b.Max.X && other.Max.Y <= b.Max.Y && other.Max.Z <= b.Max.Z
}

// ContainsPoint reports whether p lies within b, faces inclusive.
func (b AABB) ContainsPoint(p Vector3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether b and other overlap. Boxes that only touch at a
// shared face are considered intersecting.
func (b AABB) Intersects(other AABB) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Expand returns b grown by margin on every side. fillVoxels uses this to
// widen a mesh's query bounds by half a cell edge before the R-tree
// broad-phase lookup, so a boundary-adjacent cell isn't dropped by a
// floating-point rounding error in the AABB intersection test.
func (b AABB) Expand(margin float64) AABB {
	m := Vector3{X: margin, Y: margin, Z: margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}
