package broadphase

import (
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned bounding box in R^3, the volume bound used
// throughout the hierarchy tree and traversals.
type AABB struct {
	Min, Max r3.Vector
}

// NewAABB builds an AABB from two corner vectors, normalizing them so Min
// and Max are actually the component-wise low and high corners.
func NewAABB(a, b r3.Vector) AABB {
	return AABB{Min: vecMin(a, b), Max: vecMax(a, b)}
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-widths of the box along each axis.
func (b AABB) Extents() r3.Vector {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Size is a monotone volume proxy: the surface area of the box. Union only
// ever grows it, which is all the insertion-cost and balance heuristics need.
func (b AABB) Size() float64 {
	d := b.Max.Sub(b.Min)
	return 2.0 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// Overlap reports whether the two boxes intersect (closed on both ends).
func (b AABB) Overlap(o AABB) bool {
	if b.Min.X > o.Max.X || o.Min.X > b.Max.X {
		return false
	}
	if b.Min.Y > o.Max.Y || o.Min.Y > b.Max.Y {
		return false
	}
	if b.Min.Z > o.Max.Z || o.Min.Z > b.Max.Z {
		return false
	}
	return true
}

// Distance returns the gap between the two boxes, 0 when they overlap.
func (b AABB) Distance(o AABB) float64 {
	dx := math.Max(0, math.Max(b.Min.X-o.Max.X, o.Min.X-b.Max.X))
	dy := math.Max(0, math.Max(b.Min.Y-o.Max.Y, o.Min.Y-b.Max.Y))
	dz := math.Max(0, math.Max(b.Min.Z-o.Max.Z, o.Min.Z-b.Max.Z))
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Contains reports whether o lies entirely within b.
func (b AABB) Contains(o AABB) bool {
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y && b.Min.Z <= o.Min.Z &&
		o.Max.X <= b.Max.X && o.Max.Y <= b.Max.Y && o.Max.Z <= b.Max.Z
}

// Merge returns the smallest box containing both b and o.
func (b AABB) Merge(o AABB) AABB {
	return AABB{Min: vecMin(b.Min, o.Min), Max: vecMax(b.Max, o.Max)}
}

// MergedSize is the surface area of Merge(b, o); the insertion-cost
// computation in Tree.Insert calls this a lot.
func (b AABB) MergedSize(o AABB) float64 {
	return b.Merge(o).Size()
}

// Translated returns b shifted by v.
func (b AABB) Translated(v r3.Vector) AABB {
	return AABB{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// Fattened returns b enlarged by margin along every axis, used to compute a
// leaf's stored (fat) AABB from an object's reported AABB.
func (b AABB) Fattened(margin float64) AABB {
	r := r3.Vector{X: margin, Y: margin, Z: margin}
	return AABB{Min: b.Min.Sub(r), Max: b.Max.Add(r)}
}
