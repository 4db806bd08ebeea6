package broadphase

import (
	"math"

	"github.com/golang/geo/r3"
)

// Box is an oriented bounding box: the synthesized leaf surrogate for a
// hierarchical-grid cell, used for the overlap test against a plain AABB
// tree node under a non-identity pose and passed to the callback for every
// matched cell on both grid paths. CostDensity and ThresholdOccupied are
// carried through from the owning GridNode so the grid traversal doesn't
// need a second lookup.
type Box struct {
	Pose              Pose
	HalfSize          r3.Vector
	CostDensity       float64
	ThresholdOccupied float64
}

// gridNodeBox builds the world-frame oriented box for a grid cell under
// the object pose that owns it.
func gridNodeBox(pose Pose, cell AABB, costDensity, threshold float64) Box {
	return Box{
		Pose: Pose{
			Translation: pose.Translation.Add(pose.Rotation.Apply(cell.Center())),
			Rotation:    pose.Rotation,
		},
		HalfSize:          cell.Extents(),
		CostDensity:       costDensity,
		ThresholdOccupied: threshold,
	}
}

// boxFromWorldAABB builds an identity-rotation Box directly from an
// already-world-space AABB, for the axis-aligned grid traversal path
// where no further rotation composition is needed.
func boxFromWorldAABB(bv AABB, costDensity, threshold float64) Box {
	return Box{
		Pose:              Pose{Translation: bv.Center(), Rotation: IdentityRotation},
		HalfSize:          bv.Extents(),
		CostDensity:       costDensity,
		ThresholdOccupied: threshold,
	}
}

// AABB returns the smallest axis-aligned box enclosing b, via the standard
// abs-rotation-matrix bound (each world extent is the rotated half-size
// projected onto that axis).
func (b Box) AABB() AABB {
	r := b.Pose.Rotation
	ext := r3.Vector{
		X: math.Abs(r[0][0])*b.HalfSize.X + math.Abs(r[0][1])*b.HalfSize.Y + math.Abs(r[0][2])*b.HalfSize.Z,
		Y: math.Abs(r[1][0])*b.HalfSize.X + math.Abs(r[1][1])*b.HalfSize.Y + math.Abs(r[1][2])*b.HalfSize.Z,
		Z: math.Abs(r[2][0])*b.HalfSize.X + math.Abs(r[2][1])*b.HalfSize.Y + math.Abs(r[2][2])*b.HalfSize.Z,
	}
	return AABB{Min: b.Pose.Translation.Sub(ext), Max: b.Pose.Translation.Add(ext)}
}

// Transform returns the box's own pose, satisfying Object.
func (b Box) Transform() Pose { return b.Pose }

// GeometryKind reports Box as a plain leaf shape; a synthesized box is
// never itself the root of a further grid traversal.
func (b Box) GeometryKind() GeometryKind { return GeometryGeneric }

// IsFree reports false: a synthesized grid-cell box stands in for solid
// (or at least not-provably-empty) occupancy, never free space.
func (b Box) IsFree() bool { return false }

// overlapsAABB reports whether the oriented box overlaps an axis-aligned
// box, via the 15-axis separating-axis test. Adapted from
// spatialmath.obbSATMaxGap (viamrobotics-rdk/spatialmath/sat_generic.go),
// generalized here to the (OBB, AABB) pair produced by the grid traversal:
// the AABB side plugs in as a box with identity rotation.
func (b Box) overlapsAABB(o AABB) bool {
	return b.satMaxGap(o) < 0
}

// distanceLowerBound returns a lower bound on the distance between b and
// o, 0 when they overlap. Used to prune grid-traversal subtrees the same
// way AABB.Distance prunes the plain tree-vs-tree traversals.
func (b Box) distanceLowerBound(o AABB) float64 {
	if g := b.satMaxGap(o); g > 0 {
		return g
	}
	return 0
}

// satMaxGap returns the maximum separation gap between b and o across all
// 15 SAT axes: negative means the boxes overlap, with |gap| the
// penetration depth; non-negative is a separating-axis witness.
func (b Box) satMaxGap(o AABB) float64 {
	rmA := b.Pose.Rotation
	rmB := IdentityRotation
	centerDist := o.Center().Sub(b.Pose.Translation)

	var input [27]float64
	for i := 0; i < 3; i++ {
		// The box's local axis i in the world frame is column i of its
		// rotation, matching RotationMatrix.Apply.
		input[i*3+0] = rmA[0][i]
		input[i*3+1] = rmA[1][i]
		input[i*3+2] = rmA[2][i]
	}
	for i := 0; i < 3; i++ {
		row := rmB.Row(i)
		input[9+i*3+0] = row.X
		input[9+i*3+1] = row.Y
		input[9+i*3+2] = row.Z
	}
	input[18], input[19], input[20] = b.HalfSize.X, b.HalfSize.Y, b.HalfSize.Z
	oExt := o.Extents()
	input[21], input[22], input[23] = oExt.X, oExt.Y, oExt.Z
	input[24], input[25], input[26] = centerDist.X, centerDist.Y, centerDist.Z

	return obbSATMaxGap(&input)
}

// obbSATMaxGap computes the maximum separation gap across all 15 SAT axes
// for two oriented bounding boxes, using Ericson's precomputed R-matrix
// formulation ("Real-Time Collision Detection" ch. 4.4). Ported from
// spatialmath.obbSATMaxGap (viamrobotics-rdk/spatialmath/sat_generic.go).
//
// Input layout (27 float64s):
//
//	[0..8]   box A's three local axes in the world frame, one after another
//	[9..17]  box B's three local axes in the world frame, one after another
//	[18..20] halfSizeA
//	[21..23] halfSizeB
//	[24..26] centerDist (cB - cA)
func obbSATMaxGap(input *[27]float64) float64 {
	const eps = 1e-10

	a0, a1, a2 := input[0], input[1], input[2]
	a3, a4, a5 := input[3], input[4], input[5]
	a6, a7, a8 := input[6], input[7], input[8]
	b0, b1, b2 := input[9], input[10], input[11]
	b3, b4, b5 := input[12], input[13], input[14]
	b6, b7, b8 := input[15], input[16], input[17]

	hA0, hA1, hA2 := input[18], input[19], input[20]
	hB0, hB1, hB2 := input[21], input[22], input[23]
	cdx, cdy, cdz := input[24], input[25], input[26]

	t0 := a0*cdx + a1*cdy + a2*cdz
	t1 := a3*cdx + a4*cdy + a5*cdz
	t2 := a6*cdx + a7*cdy + a8*cdz

	r00 := a0*b0 + a1*b1 + a2*b2
	r01 := a0*b3 + a1*b4 + a2*b5
	r02 := a0*b6 + a1*b7 + a2*b8
	r10 := a3*b0 + a4*b1 + a5*b2
	r11 := a3*b3 + a4*b4 + a5*b5
	r12 := a3*b6 + a4*b7 + a5*b8
	r20 := a6*b0 + a7*b1 + a8*b2
	r21 := a6*b3 + a7*b4 + a8*b5
	r22 := a6*b6 + a7*b7 + a8*b8

	ar00 := math.Abs(r00) + eps
	ar01 := math.Abs(r01) + eps
	ar02 := math.Abs(r02) + eps
	ar10 := math.Abs(r10) + eps
	ar11 := math.Abs(r11) + eps
	ar12 := math.Abs(r12) + eps
	ar20 := math.Abs(r20) + eps
	ar21 := math.Abs(r21) + eps
	ar22 := math.Abs(r22) + eps

	best := math.Inf(-1)

	if g := math.Abs(t0) - hA0 - (hB0*ar00 + hB1*ar01 + hB2*ar02); g > best {
		best = g
	}
	if g := math.Abs(t1) - hA1 - (hB0*ar10 + hB1*ar11 + hB2*ar12); g > best {
		best = g
	}
	if g := math.Abs(t2) - hA2 - (hB0*ar20 + hB1*ar21 + hB2*ar22); g > best {
		best = g
	}

	if g := math.Abs(t0*r00+t1*r10+t2*r20) - hB0 - (hA0*ar00 + hA1*ar10 + hA2*ar20); g > best {
		best = g
	}
	if g := math.Abs(t0*r01+t1*r11+t2*r21) - hB1 - (hA0*ar01 + hA1*ar11 + hA2*ar21); g > best {
		best = g
	}
	if g := math.Abs(t0*r02+t1*r12+t2*r22) - hB2 - (hA0*ar02 + hA1*ar12 + hA2*ar22); g > best {
		best = g
	}

	if l2 := 1 - r00*r00; l2 > eps {
		raw := math.Abs(t2*r10-t1*r20) - (hA1*ar20 + hA2*ar10) - (hB1*ar02 + hB2*ar01)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r01*r01; l2 > eps {
		raw := math.Abs(t2*r11-t1*r21) - (hA1*ar21 + hA2*ar11) - (hB0*ar02 + hB2*ar00)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r02*r02; l2 > eps {
		raw := math.Abs(t2*r12-t1*r22) - (hA1*ar22 + hA2*ar12) - (hB0*ar01 + hB1*ar00)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r10*r10; l2 > eps {
		raw := math.Abs(t0*r20-t2*r00) - (hA0*ar20 + hA2*ar00) - (hB1*ar12 + hB2*ar11)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r11*r11; l2 > eps {
		raw := math.Abs(t0*r21-t2*r01) - (hA0*ar21 + hA2*ar01) - (hB0*ar12 + hB2*ar10)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r12*r12; l2 > eps {
		raw := math.Abs(t0*r22-t2*r02) - (hA0*ar22 + hA2*ar02) - (hB0*ar11 + hB1*ar10)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r20*r20; l2 > eps {
		raw := math.Abs(t1*r00-t0*r10) - (hA0*ar10 + hA1*ar00) - (hB1*ar22 + hB2*ar21)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r21*r21; l2 > eps {
		raw := math.Abs(t1*r01-t0*r11) - (hA0*ar11 + hA1*ar01) - (hB0*ar22 + hB2*ar20)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}
	if l2 := 1 - r22*r22; l2 > eps {
		raw := math.Abs(t1*r02-t0*r12) - (hA0*ar12 + hA1*ar02) - (hB0*ar21 + hB1*ar20)
		if g := raw / math.Sqrt(l2); g > best {
			best = g
		}
	}

	return best
}
