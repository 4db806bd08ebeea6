package broadphase

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func buildTestTree(t *testing.T, spheres []*sphereObject) *Tree {
	t.Helper()
	tree := NewTree(2, 0)
	for _, s := range spheres {
		tree.Insert(s.AABB(), s)
	}
	return tree
}

func TestCollisionRecurseStopsEarly(t *testing.T) {
	spheres := []*sphereObject{
		newSphere("a", r3.Vector{X: 0}, 1),
		newSphere("b", r3.Vector{X: 1}, 1),
		newSphere("c", r3.Vector{X: 1.5}, 1),
	}
	tree := buildTestTree(t, spheres)

	var calls int
	stopped := selfCollisionRecurse(tree, tree.Root(), func(a, b Object) bool {
		calls++
		return true // stop after the first candidate pair
	})
	if !stopped {
		t.Errorf("expected traversal to report it stopped early")
	}
	if calls != 1 {
		t.Errorf("got %d callback invocations, want exactly 1 after an early stop", calls)
	}
}

func TestCollisionRecurseTreeVsTree(t *testing.T) {
	t1 := buildTestTree(t, []*sphereObject{newSphere("a", r3.Vector{X: 0}, 1)})
	t2 := buildTestTree(t, []*sphereObject{
		newSphere("b", r3.Vector{X: 0.5}, 1),
		newSphere("c", r3.Vector{X: 50}, 1),
	})

	var pairs int
	collisionRecurse(t1, t1.Root(), t2, t2.Root(), func(a, b Object) bool {
		pairs++
		return false
	})
	if pairs != 1 {
		t.Errorf("got %d pairs, want 1", pairs)
	}
}

func TestDistanceRecurseFindsNearestPair(t *testing.T) {
	t1 := buildTestTree(t, []*sphereObject{newSphere("a", r3.Vector{X: 0}, 1)})
	t2 := buildTestTree(t, []*sphereObject{
		newSphere("near", r3.Vector{X: 5}, 1),
		newSphere("far", r3.Vector{X: 50}, 1),
	})

	minDist := math.Inf(1)
	distanceRecurse(t1, t1.Root(), t2, t2.Root(), func(a, b Object) (float64, bool) {
		return sphereDistance(a.(*sphereObject), b.(*sphereObject)), false
	}, &minDist)

	want := sphereDistance(t1.Get(t1.Root()).Data.(*sphereObject), newSphere("near", r3.Vector{X: 5}, 1))
	if math.Abs(minDist-want) > 1e-9 {
		t.Errorf("got minDist = %v, want %v", minDist, want)
	}
}
