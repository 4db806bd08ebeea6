package broadphase

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

// octreeTestObject is a minimal OctreeObject used to exercise the grid
// traversal: a small pre-built GridNode hierarchy placed at a configurable
// pose and passed to the manager as a query object.
type octreeTestObject struct {
	pose   Pose
	root   *GridNode
	rootBV AABB
}

func (o *octreeTestObject) AABB() AABB                 { return o.pose.TransformAABB(o.rootBV) }
func (o *octreeTestObject) Transform() Pose            { return o.pose }
func (o *octreeTestObject) GeometryKind() GeometryKind { return GeometryOctree }
func (o *octreeTestObject) IsFree() bool               { return false }
func (o *octreeTestObject) OctreeRoot() *GridNode      { return o.root }
func (o *octreeTestObject) OctreeRootBV() AABB         { return o.rootBV }
func (o *octreeTestObject) DefaultOccupancy() float64  { return 0.5 }

// newTestOctree builds a 2-level grid covering [-1,1]^3 with octant 0
// (the -x,-y,-z cell, i.e. [-1,0]^3) marked occupied and every other
// octant marked free. The root carries the occupancy of its occupied
// child, since distance traversals prune any grid node that is not
// Occupied.
func newTestOctree(pose Pose) *octreeTestObject {
	rootBV := box(-1, -1, -1, 1, 1, 1)
	root := &GridNode{BV: rootBV, Occupancy: 1.0, OccupancyThreshold: 0.5}
	for i := 0; i < 8; i++ {
		cell := childBV(rootBV, i)
		child := &GridNode{BV: cell, OccupancyThreshold: 0.5}
		if i == 0 {
			child.Occupancy = 1.0
		} else {
			child.Free = true
		}
		root.Children[i] = child
	}
	return &octreeTestObject{pose: pose, root: root, rootBV: rootBV}
}

func TestGridCollideIdentityFindsOccupiedCellOnly(t *testing.T) {
	m, err := NewManager(WithOctreeAsGeometryCollide(false))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	inOccupied := newSphere("in", r3.Vector{X: -0.5, Y: -0.5, Z: -0.5}, 0.1)
	inFree := newSphere("out", r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, 0.1)
	m.RegisterObjects([]Object{inOccupied, inFree})

	obj := newTestOctree(IdentityPose)
	var hits []Object
	m.Collide(obj, func(a, b Object) bool {
		hits = append(hits, a)
		return false
	})

	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1 (only the sphere inside the occupied octant)", len(hits))
	}
	if hits[0] != Object(inOccupied) {
		t.Errorf("expected the hit to be the sphere inside the occupied octant")
	}
}

func TestGridCollideAsGeometryTreatsOctreeAsOpaqueAABB(t *testing.T) {
	// Default config: OctreeAsGeometryCollide is true, so the octree's
	// root AABB is treated as one opaque leaf rather than descending into
	// its cells.
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	inFree := newSphere("out", r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, 0.1)
	m.RegisterObjects([]Object{inFree})

	obj := newTestOctree(IdentityPose)
	var hits int
	m.Collide(obj, func(a, b Object) bool {
		hits++
		return false
	})
	if hits != 1 {
		t.Errorf("got %d hits, want 1 (opaque root AABB overlaps the sphere regardless of cell occupancy)", hits)
	}
}

func TestGridDistanceIdentityOnlyCountsOccupiedCells(t *testing.T) {
	m, err := NewManager(WithOctreeAsGeometryDistance(false))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	near := newSphere("near", r3.Vector{X: 0.6, Y: 0.6, Z: 0.6}, 0.1)
	m.RegisterObjects([]Object{near})

	obj := newTestOctree(IdentityPose)
	dist := m.Distance(obj, func(a, b Object) (float64, bool) {
		s := a.(*sphereObject)
		// Distance from the sphere surface to the occupied cell's corner
		// nearest it, at (0,0,0).
		d := s.center.Norm() - s.radius
		if d < 0 {
			d = 0
		}
		return d, false
	})
	if math.IsInf(dist, 1) {
		t.Fatalf("expected a finite distance to the one occupied cell")
	}
}

// newTestOctreeWithAbsentOctant builds a 2-level grid like newTestOctree,
// but leaves octant 0 (the -x,-y,-z cell) entirely nil — an unexplored
// octant, distinct from one explicitly marked Free — while octant 7 (the
// +x,+y,+z cell) is marked Free.
func newTestOctreeWithAbsentOctant(pose Pose) *octreeTestObject {
	rootBV := box(-1, -1, -1, 1, 1, 1)
	root := &GridNode{BV: rootBV, OccupancyThreshold: 0.5}
	for i := 1; i < 8; i++ {
		cell := childBV(rootBV, i)
		child := &GridNode{BV: cell, OccupancyThreshold: 0.5}
		if i == 7 {
			child.Free = true
		}
		root.Children[i] = child
	}
	return &octreeTestObject{pose: pose, root: root, rootBV: rootBV}
}

func TestGridCollideIdentityTreatsAbsentOctantAsCollidable(t *testing.T) {
	m, err := NewManager(WithOctreeAsGeometryCollide(false))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	inAbsent := newSphere("in-absent", r3.Vector{X: -0.5, Y: -0.5, Z: -0.5}, 0.1)
	inFree := newSphere("in-free", r3.Vector{X: 0.5, Y: 0.5, Z: 0.5}, 0.1)
	m.RegisterObjects([]Object{inAbsent, inFree})

	obj := newTestOctreeWithAbsentOctant(IdentityPose)
	var hits []Object
	var boxes []Object
	m.Collide(obj, func(a, b Object) bool {
		hits = append(hits, a)
		boxes = append(boxes, b)
		return false
	})

	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1 (the absent octant is collidable, the free one is not)", len(hits))
	}
	if hits[0] != Object(inAbsent) {
		t.Errorf("expected the hit to be the sphere inside the absent (unexplored) octant")
	}
	if _, ok := boxes[0].(Box); !ok {
		t.Errorf("expected the callback's second argument to be a synthesized Box, got %T", boxes[0])
	}
}

func TestGridCollideIdentitySkipsFreeLeafAgainstAbsentOctant(t *testing.T) {
	m, err := NewManager(WithOctreeAsGeometryCollide(false))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	freeLeaf := newSphere("free-leaf", r3.Vector{X: -0.5, Y: -0.5, Z: -0.5}, 0.1)
	freeLeaf.free = true
	m.RegisterObjects([]Object{freeLeaf})

	obj := newTestOctreeWithAbsentOctant(IdentityPose)
	var hits int
	m.Collide(obj, func(a, b Object) bool {
		hits++
		return false
	})
	if hits != 0 {
		t.Errorf("got %d hits, want 0: a free-space leaf never collides, even against an absent octant", hits)
	}
}

func TestGridCollideOBBWithRotatedPose(t *testing.T) {
	m, err := NewManager(WithOctreeAsGeometryCollide(false))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	// A 90-degree rotation about Z swaps the occupied octant's world
	// footprint from (-,-,-) to (+,-,-): place a sphere there.
	rot := RotationMatrix{
		{0, -1, 0},
		{1, 0, 0},
		{0, 0, 1},
	}
	pose := Pose{Rotation: rot}

	target := newSphere("in", r3.Vector{X: 0.5, Y: -0.5, Z: -0.5}, 0.1)
	m.RegisterObjects([]Object{target})

	obj := newTestOctree(pose)
	var hits int
	m.Collide(obj, func(a, b Object) bool {
		hits++
		return false
	})
	if hits != 1 {
		t.Errorf("got %d hits, want 1 under the rotated pose", hits)
	}
}
