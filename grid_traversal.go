package broadphase

import (
	"sort"

	"github.com/golang/geo/r3"
)

// gridCollide dispatches a tree-vs-grid collision traversal, taking the
// cheaper axis-aligned path when the grid object's pose has identity
// rotation and falling back to the oriented-box path otherwise. Ported
// from the Transform3f/templated-translation split in
// collisionRecurse_ (broadphase_dynamic_AABB_tree_array-inl.h).
func gridCollide(t *Tree, n Handle, obj OctreeObject, cb CollisionCallback) bool {
	if t.Empty() {
		return false
	}
	pose := obj.Transform()
	root := obj.OctreeRoot()
	if root == nil {
		return false
	}
	rootBV := obj.OctreeRootBV()
	if pose.IsIdentityRotation() {
		return gridCollideIdentity(t, n, obj, root, rootBV.Translated(pose.Translation), pose.Translation, cb)
	}
	return gridCollideOBB(t, n, obj, root, rootBV, pose, cb)
}

// gridCollideIdentity walks a binary tree node against a grid cell whose
// world AABB is gridBV (cell local bound translated by the object's
// pose), reporting overlapping (leaf, leaf-cell) pairs for every cell not
// marked Free.
//
// A nil grid means the AABB-tree side has descended into an octant the
// grid has no child for at all (as opposed to a child explicitly marked
// Free) — an absent octant is collidable by default, with
// obj.DefaultOccupancy() standing in for the missing cell's occupancy, as
// long as the tree-side leaf isn't itself free space.
func gridCollideIdentity(t *Tree, n Handle, obj OctreeObject, grid *GridNode, gridBV AABB, translation r3.Vector, cb CollisionCallback) bool {
	if grid == nil {
		treeNode := t.Get(n)
		if !treeNode.IsLeaf() {
			if gridCollideIdentity(t, treeNode.Children[0], obj, nil, gridBV, translation, cb) {
				return true
			}
			return gridCollideIdentity(t, treeNode.Children[1], obj, nil, gridBV, translation, cb)
		}
		if treeNode.Data.IsFree() {
			return false
		}
		if !treeNode.BV.Overlap(gridBV) {
			return false
		}
		box := boxFromWorldAABB(gridBV, obj.DefaultOccupancy(), 0)
		return cb(treeNode.Data, box)
	}
	if grid.Free {
		return false
	}
	treeNode := t.Get(n)
	if !treeNode.BV.Overlap(gridBV) {
		return false
	}
	if treeNode.IsLeaf() && grid.IsLeaf() {
		box := boxFromWorldAABB(gridBV, grid.CostDensity, grid.OccupancyThreshold)
		return cb(treeNode.Data, box)
	}
	if grid.IsLeaf() || (!treeNode.IsLeaf() && treeNode.BV.Size() > gridBV.Size()) {
		if gridCollideIdentity(t, treeNode.Children[0], obj, grid, gridBV, translation, cb) {
			return true
		}
		return gridCollideIdentity(t, treeNode.Children[1], obj, grid, gridBV, translation, cb)
	}
	for i, c := range grid.Children {
		childWorld := childBV(grid.BV, i).Translated(translation)
		if gridCollideIdentity(t, n, obj, c, childWorld, translation, cb) {
			return true
		}
	}
	return false
}

// gridCollideOBB is the general-pose counterpart of gridCollideIdentity:
// each grid cell is tested against the tree node's AABB as an oriented
// box (via Box.overlapsAABB) instead of translated in place.
func gridCollideOBB(t *Tree, n Handle, obj OctreeObject, grid *GridNode, localBV AABB, pose Pose, cb CollisionCallback) bool {
	if grid == nil {
		treeNode := t.Get(n)
		if !treeNode.IsLeaf() {
			if gridCollideOBB(t, treeNode.Children[0], obj, nil, localBV, pose, cb) {
				return true
			}
			return gridCollideOBB(t, treeNode.Children[1], obj, nil, localBV, pose, cb)
		}
		if treeNode.Data.IsFree() {
			return false
		}
		box := gridNodeBox(pose, localBV, obj.DefaultOccupancy(), 0)
		if !box.overlapsAABB(treeNode.BV) {
			return false
		}
		return cb(treeNode.Data, box)
	}
	if grid.Free {
		return false
	}
	box := gridNodeBox(pose, localBV, grid.CostDensity, grid.OccupancyThreshold)
	treeNode := t.Get(n)
	if !box.overlapsAABB(treeNode.BV) {
		return false
	}
	if treeNode.IsLeaf() && grid.IsLeaf() {
		return cb(treeNode.Data, box)
	}
	if grid.IsLeaf() || (!treeNode.IsLeaf() && treeNode.BV.Size() > localBV.Size()) {
		if gridCollideOBB(t, treeNode.Children[0], obj, grid, localBV, pose, cb) {
			return true
		}
		return gridCollideOBB(t, treeNode.Children[1], obj, grid, localBV, pose, cb)
	}
	for i, c := range grid.Children {
		if gridCollideOBB(t, n, obj, c, childBV(grid.BV, i), pose, cb) {
			return true
		}
	}
	return false
}

// gridDistance is the distance counterpart of gridCollide.
func gridDistance(t *Tree, n Handle, obj OctreeObject, cb DistanceCallback, minDist *float64) bool {
	if t.Empty() {
		return false
	}
	pose := obj.Transform()
	root := obj.OctreeRoot()
	if root == nil {
		return false
	}
	rootBV := obj.OctreeRootBV()
	if pose.IsIdentityRotation() {
		return gridDistanceIdentity(t, n, obj, root, rootBV.Translated(pose.Translation), pose.Translation, cb, minDist)
	}
	return gridDistanceOBB(t, n, obj, root, rootBV, pose, cb, minDist)
}

type gridChildEntry struct {
	node *GridNode
	bv   AABB
}

func gridDistanceIdentity(t *Tree, n Handle, obj OctreeObject, grid *GridNode, gridBV AABB, translation r3.Vector, cb DistanceCallback, minDist *float64) bool {
	if grid == nil {
		return false
	}
	if !grid.Occupied() {
		return false
	}
	treeNode := t.Get(n)
	if treeNode.BV.Distance(gridBV) >= *minDist {
		return false
	}
	if treeNode.IsLeaf() && grid.IsLeaf() {
		box := boxFromWorldAABB(gridBV, grid.CostDensity, grid.OccupancyThreshold)
		dist, stop := cb(treeNode.Data, box)
		if dist < *minDist {
			*minDist = dist
		}
		return stop
	}
	if grid.IsLeaf() || (!treeNode.IsLeaf() && treeNode.BV.Size() > gridBV.Size()) {
		c1, c2 := treeNode.Children[0], treeNode.Children[1]
		d1 := t.Get(c1).BV.Distance(gridBV)
		d2 := t.Get(c2).BV.Distance(gridBV)
		if d2 < d1 {
			c1, c2 = c2, c1
		}
		if gridDistanceIdentity(t, c1, obj, grid, gridBV, translation, cb, minDist) {
			return true
		}
		return gridDistanceIdentity(t, c2, obj, grid, gridBV, translation, cb, minDist)
	}

	var entries []gridChildEntry
	for i, c := range grid.Children {
		if c == nil {
			continue
		}
		entries = append(entries, gridChildEntry{c, childBV(grid.BV, i).Translated(translation)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return treeNode.BV.Distance(entries[i].bv) < treeNode.BV.Distance(entries[j].bv)
	})
	for _, e := range entries {
		if gridDistanceIdentity(t, n, obj, e.node, e.bv, translation, cb, minDist) {
			return true
		}
	}
	return false
}

func gridDistanceOBB(t *Tree, n Handle, obj OctreeObject, grid *GridNode, localBV AABB, pose Pose, cb DistanceCallback, minDist *float64) bool {
	if grid == nil {
		return false
	}
	if !grid.Occupied() {
		return false
	}
	box := gridNodeBox(pose, localBV, grid.CostDensity, grid.OccupancyThreshold)
	treeNode := t.Get(n)
	if box.distanceLowerBound(treeNode.BV) >= *minDist {
		return false
	}
	if treeNode.IsLeaf() && grid.IsLeaf() {
		dist, stop := cb(treeNode.Data, box)
		if dist < *minDist {
			*minDist = dist
		}
		return stop
	}
	if grid.IsLeaf() || (!treeNode.IsLeaf() && treeNode.BV.Size() > localBV.Size()) {
		if gridDistanceOBB(t, treeNode.Children[0], obj, grid, localBV, pose, cb, minDist) {
			return true
		}
		return gridDistanceOBB(t, treeNode.Children[1], obj, grid, localBV, pose, cb, minDist)
	}

	type localEntry struct {
		node *GridNode
		bv   AABB
	}
	var entries []localEntry
	for i, c := range grid.Children {
		if c == nil {
			continue
		}
		entries = append(entries, localEntry{c, childBV(grid.BV, i)})
	}
	sort.Slice(entries, func(i, j int) bool {
		bi := gridNodeBox(pose, entries[i].bv, entries[i].node.CostDensity, entries[i].node.OccupancyThreshold)
		bj := gridNodeBox(pose, entries[j].bv, entries[j].node.CostDensity, entries[j].node.OccupancyThreshold)
		return bi.distanceLowerBound(treeNode.BV) < bj.distanceLowerBound(treeNode.BV)
	})
	for _, e := range entries {
		if gridDistanceOBB(t, n, obj, e.node, e.bv, pose, cb, minDist) {
			return true
		}
	}
	return false
}
