package broadphase

// collisionRecurseQuery walks a tree against a single external query
// object's AABB, reporting every leaf whose AABB overlaps it. Ported from
// the tree-vs-query collisionRecurse overload in
// broadphase_dynamic_AABB_tree_array-inl.h.
func collisionRecurseQuery(t *Tree, n Handle, query Object, queryBV AABB, cb CollisionCallback) bool {
	node := t.Get(n)
	if !node.BV.Overlap(queryBV) {
		return false
	}
	if node.IsLeaf() {
		return cb(node.Data, query)
	}
	if collisionRecurseQuery(t, node.Children[0], query, queryBV, cb) {
		return true
	}
	return collisionRecurseQuery(t, node.Children[1], query, queryBV, cb)
}

// distanceRecurseQuery walks a tree against a single external query
// object's AABB, pruning subtrees once their AABB-to-query lower bound is
// no smaller than the running minimum. The tree-vs-query select()
// descent heuristic isn't pinned down by the source; this picks whichever
// child's AABB center is nearer the query's AABB center first, so the
// running minimum tightens as early as possible.
func distanceRecurseQuery(t *Tree, n Handle, query Object, queryBV AABB, cb DistanceCallback, minDist *float64) bool {
	node := t.Get(n)
	if node.BV.Distance(queryBV) >= *minDist {
		return false
	}
	if node.IsLeaf() {
		d, stop := cb(node.Data, query)
		if d < *minDist {
			*minDist = d
		}
		return stop
	}

	c1, c2 := node.Children[0], node.Children[1]
	center := queryBV.Center()
	d1 := t.Get(c1).BV.Center().Sub(center).Norm()
	d2 := t.Get(c2).BV.Center().Sub(center).Norm()
	if d2 < d1 {
		c1, c2 = c2, c1
	}
	if distanceRecurseQuery(t, c1, query, queryBV, cb, minDist) {
		return true
	}
	return distanceRecurseQuery(t, c2, query, queryBV, cb, minDist)
}
