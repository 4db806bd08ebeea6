package broadphase

// CollisionCallback is invoked for every candidate pair whose leaf AABBs
// overlap. Returning true stops the traversal early.
type CollisionCallback func(a, b Object) bool

// DistanceCallback is invoked for every candidate pair reached by a
// distance traversal; it computes (or looks up) the exact distance between
// a and b and returns it so the traversal can prune using it as the
// running minimum. Returning stop=true ends the traversal early.
type DistanceCallback func(a, b Object) (dist float64, stop bool)

// collisionRecurse walks two trees together, reporting every leaf pair
// whose AABBs overlap. Ported from the non-octree collisionRecurse in
// broadphase_dynamic_AABB_tree_array-inl.h, generalized from the Box2D
// pointer-pair manager by operating on two (*Tree, Handle) pairs directly.
func collisionRecurse(t1 *Tree, n1 Handle, t2 *Tree, n2 Handle, cb CollisionCallback) bool {
	node1 := t1.Get(n1)
	node2 := t2.Get(n2)

	if !node1.BV.Overlap(node2.BV) {
		return false
	}

	if node1.IsLeaf() && node2.IsLeaf() {
		return cb(node1.Data, node2.Data)
	}

	if node2.IsLeaf() || (!node1.IsLeaf() && node1.BV.Size() > node2.BV.Size()) {
		if collisionRecurse(t1, node1.Children[0], t2, n2, cb) {
			return true
		}
		return collisionRecurse(t1, node1.Children[1], t2, n2, cb)
	}

	if collisionRecurse(t1, n1, t2, node2.Children[0], cb) {
		return true
	}
	return collisionRecurse(t1, n1, t2, node2.Children[1], cb)
}

// distanceRecurse walks two trees together with nearer-child-first pruning:
// a subtree is skipped once its AABB-to-AABB lower bound is no smaller than
// the running minimum distance. Ported from the non-octree distanceRecurse
// in broadphase_dynamic_AABB_tree_array-inl.h.
func distanceRecurse(t1 *Tree, n1 Handle, t2 *Tree, n2 Handle, cb DistanceCallback, minDist *float64) bool {
	node1 := t1.Get(n1)
	node2 := t2.Get(n2)

	if node1.IsLeaf() && node2.IsLeaf() {
		d, stop := cb(node1.Data, node2.Data)
		if d < *minDist {
			*minDist = d
		}
		return stop
	}

	if node2.IsLeaf() || (!node1.IsLeaf() && node1.BV.Size() > node2.BV.Size()) {
		c1, c2 := node1.Children[0], node1.Children[1]
		d1 := t1.Get(c1).BV.Distance(node2.BV)
		d2 := t1.Get(c2).BV.Distance(node2.BV)
		if d2 < d1 {
			c1, c2 = c2, c1
			d1, d2 = d2, d1
		}
		if d1 < *minDist && distanceRecurse(t1, c1, t2, n2, cb, minDist) {
			return true
		}
		if d2 < *minDist && distanceRecurse(t1, c2, t2, n2, cb, minDist) {
			return true
		}
		return false
	}

	c1, c2 := node2.Children[0], node2.Children[1]
	d1 := node1.BV.Distance(t2.Get(c1).BV)
	d2 := node1.BV.Distance(t2.Get(c2).BV)
	if d2 < d1 {
		c1, c2 = c2, c1
		d1, d2 = d2, d1
	}
	if d1 < *minDist && distanceRecurse(t1, n1, t2, c1, cb, minDist) {
		return true
	}
	if d2 < *minDist && distanceRecurse(t1, n1, t2, c2, cb, minDist) {
		return true
	}
	return false
}

// selfCollisionRecurse reports every overlapping leaf pair within a single
// tree. Ported from selfCollisionRecurse in
// broadphase_dynamic_AABB_tree_array-inl.h.
func selfCollisionRecurse(t *Tree, n Handle, cb CollisionCallback) bool {
	node := t.Get(n)
	if node.IsLeaf() {
		return false
	}
	if selfCollisionRecurse(t, node.Children[0], cb) {
		return true
	}
	if selfCollisionRecurse(t, node.Children[1], cb) {
		return true
	}
	return collisionRecurse(t, node.Children[0], t, node.Children[1], cb)
}

// selfDistanceRecurse finds the nearest leaf pair within a single tree,
// with the same nearer-child-first pruning as distanceRecurse. Ported from
// selfDistanceRecurse in broadphase_dynamic_AABB_tree_array-inl.h.
func selfDistanceRecurse(t *Tree, n Handle, cb DistanceCallback, minDist *float64) bool {
	node := t.Get(n)
	if node.IsLeaf() {
		return false
	}
	if selfDistanceRecurse(t, node.Children[0], cb, minDist) {
		return true
	}
	if selfDistanceRecurse(t, node.Children[1], cb, minDist) {
		return true
	}
	return distanceRecurse(t, node.Children[0], t, node.Children[1], cb, minDist)
}
