package broadphase

import (
	"testing"

	"github.com/golang/geo/r3"
)

func TestBoxOverlapsAABBIdentityRotation(t *testing.T) {
	b := Box{
		Pose:     Pose{Translation: r3.Vector{X: 0, Y: 0, Z: 0}, Rotation: IdentityRotation},
		HalfSize: r3.Vector{X: 1, Y: 1, Z: 1},
	}
	overlapping := box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5)
	separated := box(5, 5, 5, 6, 6, 6)

	if !b.overlapsAABB(overlapping) {
		t.Errorf("expected overlap with a box that intersects the identity-rotation OBB")
	}
	if b.overlapsAABB(separated) {
		t.Errorf("expected no overlap with a clearly separated box")
	}
}

func TestBoxOverlapsAABBRotated(t *testing.T) {
	// A box elongated along X, rotated 45 degrees about Z, should reach
	// further diagonally than its axis-aligned footprint would suggest.
	c := 0.70710678
	rot := RotationMatrix{
		{c, -c, 0},
		{c, c, 0},
		{0, 0, 1},
	}
	b := Box{
		Pose:     Pose{Translation: r3.Vector{}, Rotation: rot},
		HalfSize: r3.Vector{X: 2, Y: 0.1, Z: 0.1},
	}
	// The rotated long axis points toward (c, c, 0); a small box placed
	// along that diagonal well within the half-length of 2 should overlap.
	diag := box(0.9, 0.9, -0.1, 1.1, 1.1, 0.1)
	if !b.overlapsAABB(diag) {
		t.Errorf("expected the rotated elongated box to reach along its long axis")
	}

	// A box placed along the (unrotated) short axis direction at the same
	// distance should not be reached.
	short := box(-0.1, 1.9, -0.1, 0.1, 2.1, 0.1)
	if b.overlapsAABB(short) {
		t.Errorf("expected no overlap perpendicular to the rotated box's long axis")
	}
}

func TestBoxDistanceLowerBoundIsZeroWhenOverlapping(t *testing.T) {
	b := Box{Pose: IdentityPose, HalfSize: r3.Vector{X: 1, Y: 1, Z: 1}}
	overlapping := box(0, 0, 0, 0.5, 0.5, 0.5)
	if d := b.distanceLowerBound(overlapping); d != 0 {
		t.Errorf("got distanceLowerBound = %v for overlapping boxes, want 0", d)
	}
}

func TestBoxDistanceLowerBoundPositiveWhenSeparated(t *testing.T) {
	b := Box{Pose: IdentityPose, HalfSize: r3.Vector{X: 1, Y: 1, Z: 1}}
	far := box(10, 10, 10, 11, 11, 11)
	if d := b.distanceLowerBound(far); d <= 0 {
		t.Errorf("got distanceLowerBound = %v for separated boxes, want > 0", d)
	}
}
