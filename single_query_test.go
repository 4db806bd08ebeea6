package broadphase

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestCollisionRecurseQueryFindsAllOverlaps(t *testing.T) {
	tree := buildTestTree(t, []*sphereObject{
		newSphere("a", r3.Vector{X: 0}, 1),
		newSphere("b", r3.Vector{X: 1}, 1),
		newSphere("c", r3.Vector{X: 50}, 1),
	})
	query := newSphere("q", r3.Vector{X: 0.5}, 1)

	var hits int
	collisionRecurseQuery(tree, tree.Root(), query, query.AABB(), func(a, b Object) bool {
		hits++
		return false
	})
	if hits != 2 {
		t.Errorf("got %d hits, want 2 (a and b both overlap the query)", hits)
	}
}

func TestDistanceRecurseQueryFindsNearest(t *testing.T) {
	tree := buildTestTree(t, []*sphereObject{
		newSphere("near", r3.Vector{X: 5}, 1),
		newSphere("far", r3.Vector{X: 50}, 1),
	})
	query := newSphere("q", r3.Vector{X: 0}, 1)

	minDist := math.Inf(1)
	distanceRecurseQuery(tree, tree.Root(), query, query.AABB(), func(a, b Object) (float64, bool) {
		return sphereDistance(a.(*sphereObject), query), false
	}, &minDist)

	want := 5.0 - 1 - 1 // center gap minus both radii
	if math.Abs(minDist-want) > 1e-9 {
		t.Errorf("got minDist = %v, want %v", minDist, want)
	}
}
