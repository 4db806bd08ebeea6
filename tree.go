package broadphase

import (
	"sort"

	"github.com/golang/geo/r3"
)

// Tree is the binary AABB hierarchy built over an Arena. Node handles are
// stable across insertions and removals of *other* nodes.
type Tree struct {
	arena *Arena
	root  Handle

	topdownBalanceThreshold int
	topdownLevel            int

	// incrementalCursor remembers where the last BalanceIncremental call
	// left off, so repeated bounded calls sweep the whole tree over time
	// instead of only ever touching the same root-adjacent nodes.
	incrementalCursor Handle
}

// NewTree returns an empty hierarchy tree. topdownBalanceThreshold and
// topdownLevel are the tree_topdown_balance_threshold/tree_topdown_level
// tunables.
func NewTree(topdownBalanceThreshold, topdownLevel int) *Tree {
	return &Tree{
		arena:                   NewArena(),
		root:                    NullHandle,
		topdownBalanceThreshold: topdownBalanceThreshold,
		topdownLevel:            topdownLevel,
		incrementalCursor:       NullHandle,
	}
}

// Root returns the handle of the tree's root, or NullHandle if empty.
func (t *Tree) Root() Handle { return t.root }

// Size returns the number of leaves and internal nodes currently live.
func (t *Tree) Size() int { return t.arena.Len() }

// Empty reports whether the tree holds no nodes.
func (t *Tree) Empty() bool { return t.root == NullHandle }

// Get returns the node at h. Arena.Get's handle-validity contract applies.
func (t *Tree) Get(h Handle) *Node { return t.arena.Get(h) }

// MaxHeight returns the root's height, 0 for an empty tree.
func (t *Tree) MaxHeight() int {
	if t.root == NullHandle {
		return 0
	}
	return t.arena.Get(t.root).Height
}

// LeafSpec is one (AABB, payload) pair to seed bulk construction.
type LeafSpec struct {
	BV   AABB
	Data Object
}

// InitFromLeaves bulk-constructs the tree from scratch via the same
// top-down median-split build BalanceTopdown uses, and returns the handle
// assigned to each spec in order. The tree must be empty.
func (t *Tree) InitFromLeaves(specs []LeafSpec) []Handle {
	assertf(t.Empty(), "tree: InitFromLeaves called on a non-empty tree")
	if len(specs) == 0 {
		return nil
	}
	handles := make([]Handle, len(specs))
	for i, s := range specs {
		h := t.arena.Allocate()
		n := t.arena.Get(h)
		n.BV = s.BV.Fattened(AABBExtension)
		n.Data = s.Data
		handles[i] = h
	}
	working := append([]Handle(nil), handles...)
	t.root = t.buildTopdown(working)
	if t.root != NullHandle {
		t.arena.Get(t.root).Parent = NullHandle
	}
	return handles
}

// Insert creates a leaf holding (bv, data) and places it in the tree using
// the best-sibling insertion rule. Returns the leaf's handle.
func (t *Tree) Insert(bv AABB, data Object) Handle {
	h := t.arena.Allocate()
	n := t.arena.Get(h)
	n.BV = bv.Fattened(AABBExtension)
	n.Data = data
	t.placeLeaf(h)
	return h
}

// Remove deletes the leaf at h from the tree and frees its node.
func (t *Tree) Remove(h Handle) {
	t.detachLeaf(h)
	t.arena.Free(h)
}

// Update refits the leaf at h to bv. If the leaf's stored (fat) AABB
// already contains bv, this is a no-op; otherwise the leaf is detached and
// reinserted (under the same handle) with a freshly fattened AABB.
func (t *Tree) Update(h Handle, bv AABB) bool {
	leaf := t.arena.Get(h)
	if leaf.BV.Contains(bv) {
		return false
	}
	t.detachLeaf(h)
	leaf.BV = bv.Fattened(AABBExtension)
	leaf.Parent = NullHandle
	leaf.Children = [2]Handle{NullHandle, NullHandle}
	t.placeLeaf(h)
	return true
}

// SetLeafBV overwrites a leaf's stored AABB directly, with no containment
// check and no fattening. Used only by Manager.Update(), which refits the
// whole tree afterward.
func (t *Tree) SetLeafBV(h Handle, bv AABB) {
	t.arena.Get(h).BV = bv
}

// Refit bottom-up recomputes every internal node's BV from the current
// leaf BVs without changing topology. O(n).
func (t *Tree) Refit() {
	if t.root != NullHandle {
		t.refitRecurse(t.root)
	}
}

func (t *Tree) refitRecurse(h Handle) AABB {
	n := t.arena.Get(h)
	if n.IsLeaf() {
		return n.BV
	}
	left := t.refitRecurse(n.Children[0])
	right := t.refitRecurse(n.Children[1])
	n.BV = left.Merge(right)
	n.Height = 1 + max(t.arena.Get(n.Children[0]).Height, t.arena.Get(n.Children[1]).Height)
	return n.BV
}

// ShiftOrigin translates every node's AABB by -origin, for large-world
// origin rebasing. Ported from box2d's b2DynamicTree::ShiftOrigin
// (CollisionB2DynamicTree.go).
func (t *Tree) ShiftOrigin(origin r3.Vector) {
	for i := range t.arena.nodes {
		if t.arena.nodes[i].Height < 0 {
			continue
		}
		t.arena.nodes[i].BV.Min = t.arena.nodes[i].BV.Min.Sub(origin)
		t.arena.nodes[i].BV.Max = t.arena.nodes[i].BV.Max.Sub(origin)
	}
}

// Clear empties the tree.
func (t *Tree) Clear() {
	t.arena.Clear()
	t.root = NullHandle
	t.incrementalCursor = NullHandle
}

// placeLeaf inserts an already-allocated leaf node into the current tree
// using the best-sibling cost rule, ported from B2DynamicTree.InsertLeaf
// (CollisionB2DynamicTree.go:330-448) and generalized from 2D perimeter
// cost to 3D surface-area Size().
func (t *Tree) placeLeaf(h Handle) {
	if t.root == NullHandle {
		t.root = h
		t.arena.Get(h).Parent = NullHandle
		return
	}

	leafAABB := t.arena.Get(h).BV
	index := t.root
	for !t.arena.Get(index).IsLeaf() {
		node := t.arena.Get(index)
		child1, child2 := node.Children[0], node.Children[1]

		area := node.BV.Size()
		combinedArea := node.BV.MergedSize(leafAABB)
		cost := 2.0 * combinedArea
		inheritanceCost := 2.0 * (combinedArea - area)

		c1 := t.arena.Get(child1)
		var cost1 float64
		if c1.IsLeaf() {
			cost1 = leafAABB.MergedSize(c1.BV) + inheritanceCost
		} else {
			cost1 = (leafAABB.MergedSize(c1.BV) - c1.BV.Size()) + inheritanceCost
		}

		c2 := t.arena.Get(child2)
		var cost2 float64
		if c2.IsLeaf() {
			cost2 = leafAABB.MergedSize(c2.BV) + inheritanceCost
		} else {
			cost2 = (leafAABB.MergedSize(c2.BV) - c2.BV.Size()) + inheritanceCost
		}

		if cost < cost1 && cost < cost2 {
			break
		}

		// Ties break toward children[0].
		if cost1 <= cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := t.arena.Get(sibling).Parent
	newParent := t.arena.Allocate()

	pn := t.arena.Get(newParent)
	pn.Parent = oldParent
	pn.Children = [2]Handle{sibling, h}
	pn.BV = t.arena.Get(sibling).BV.Merge(leafAABB)
	pn.Height = t.arena.Get(sibling).Height + 1

	t.arena.Get(sibling).Parent = newParent
	t.arena.Get(h).Parent = newParent

	if oldParent != NullHandle {
		opn := t.arena.Get(oldParent)
		if opn.Children[0] == sibling {
			opn.Children[0] = newParent
		} else {
			opn.Children[1] = newParent
		}
	} else {
		t.root = newParent
	}

	idx := t.arena.Get(h).Parent
	for idx != NullHandle {
		idx = t.balance(idx)
		node := t.arena.Get(idx)
		c1 := t.arena.Get(node.Children[0])
		c2 := t.arena.Get(node.Children[1])
		node.Height = 1 + max(c1.Height, c2.Height)
		node.BV = c1.BV.Merge(c2.BV)
		idx = node.Parent
	}
}

// detachLeaf removes the leaf at h from the tree's structure (parent
// chain), freeing the leaf's former parent, but leaves h itself allocated.
// Ported from B2DynamicTree.RemoveLeaf (CollisionB2DynamicTree.go:450-495).
func (t *Tree) detachLeaf(h Handle) {
	if h == t.root {
		t.root = NullHandle
		return
	}

	leaf := t.arena.Get(h)
	parent := leaf.Parent
	pn := t.arena.Get(parent)
	grandParent := pn.Parent

	var sibling Handle
	if pn.Children[0] == h {
		sibling = pn.Children[1]
	} else {
		sibling = pn.Children[0]
	}

	if grandParent != NullHandle {
		gpn := t.arena.Get(grandParent)
		if gpn.Children[0] == parent {
			gpn.Children[0] = sibling
		} else {
			gpn.Children[1] = sibling
		}
		t.arena.Get(sibling).Parent = grandParent
		t.arena.Free(parent)

		idx := grandParent
		for idx != NullHandle {
			idx = t.balance(idx)
			node := t.arena.Get(idx)
			c1 := t.arena.Get(node.Children[0])
			c2 := t.arena.Get(node.Children[1])
			node.BV = c1.BV.Merge(c2.BV)
			node.Height = 1 + max(c1.Height, c2.Height)
			idx = node.Parent
		}
	} else {
		t.root = sibling
		t.arena.Get(sibling).Parent = NullHandle
		t.arena.Free(parent)
	}
}

// balance performs a left or right rotation if the subtree rooted at ia is
// imbalanced, and returns the handle of whatever now roots that subtree.
// Ported verbatim (modulo AABB generalization) from B2DynamicTree.Balance
// (CollisionB2DynamicTree.go:499-619).
func (t *Tree) balance(ia Handle) Handle {
	a := t.arena.Get(ia)
	if a.IsLeaf() || a.Height < 2 {
		return ia
	}

	ib, ic := a.Children[0], a.Children[1]
	b := t.arena.Get(ib)
	c := t.arena.Get(ic)

	balance := c.Height - b.Height

	if balance > 1 {
		ifh, igh := c.Children[0], c.Children[1]
		f := t.arena.Get(ifh)
		g := t.arena.Get(igh)

		c.Children[0] = ia
		c.Parent = a.Parent
		a.Parent = ic

		if c.Parent != NullHandle {
			cpn := t.arena.Get(c.Parent)
			if cpn.Children[0] == ia {
				cpn.Children[0] = ic
			} else {
				cpn.Children[1] = ic
			}
		} else {
			t.root = ic
		}

		if f.Height > g.Height {
			c.Children[1] = ifh
			a.Children[1] = igh
			g.Parent = ia
			a.BV = b.BV.Merge(g.BV)
			c.BV = a.BV.Merge(f.BV)
			a.Height = 1 + max(b.Height, g.Height)
			c.Height = 1 + max(a.Height, f.Height)
		} else {
			c.Children[1] = igh
			a.Children[1] = ifh
			f.Parent = ia
			a.BV = b.BV.Merge(f.BV)
			c.BV = a.BV.Merge(g.BV)
			a.Height = 1 + max(b.Height, f.Height)
			c.Height = 1 + max(a.Height, g.Height)
		}

		return ic
	}

	if balance < -1 {
		idh, ieh := b.Children[0], b.Children[1]
		d := t.arena.Get(idh)
		e := t.arena.Get(ieh)

		b.Children[0] = ia
		b.Parent = a.Parent
		a.Parent = ib

		if b.Parent != NullHandle {
			bpn := t.arena.Get(b.Parent)
			if bpn.Children[0] == ia {
				bpn.Children[0] = ib
			} else {
				bpn.Children[1] = ib
			}
		} else {
			t.root = ib
		}

		if d.Height > e.Height {
			b.Children[1] = idh
			a.Children[0] = ieh
			e.Parent = ia
			a.BV = c.BV.Merge(e.BV)
			b.BV = a.BV.Merge(d.BV)
			a.Height = 1 + max(c.Height, e.Height)
			b.Height = 1 + max(a.Height, d.Height)
		} else {
			b.Children[1] = ieh
			a.Children[0] = idh
			d.Parent = ia
			a.BV = c.BV.Merge(d.BV)
			b.BV = a.BV.Merge(e.BV)
			a.Height = 1 + max(c.Height, d.Height)
			b.Height = 1 + max(a.Height, e.Height)
		}

		return ib
	}

	return ia
}

// BalanceIncremental performs at most `passes` local rotations, walking
// down the taller branch from where the previous call stopped (the root on
// the first call, or when that node is gone) and restarting at the root
// when it reaches a leaf. This sweeps imbalance out of the tree
// incrementally without the cost of a full rebuild.
func (t *Tree) BalanceIncremental(passes int) {
	if t.root == NullHandle {
		return
	}
	node := t.incrementalCursor
	if node == NullHandle || !t.handleLive(node) {
		node = t.root
	}
	for i := 0; i < passes; i++ {
		n := t.arena.Get(node)
		if n.IsLeaf() {
			node = t.root
			n = t.arena.Get(node)
			if n.IsLeaf() {
				break
			}
		}
		node = t.balance(node)
		n = t.arena.Get(node)
		if n.IsLeaf() {
			node = t.root
			continue
		}
		c1 := t.arena.Get(n.Children[0])
		c2 := t.arena.Get(n.Children[1])
		if c1.Height >= c2.Height {
			node = n.Children[0]
		} else {
			node = n.Children[1]
		}
	}
	t.incrementalCursor = node
}

func (t *Tree) handleLive(h Handle) bool {
	return h >= 0 && int(h) < len(t.arena.nodes) && t.arena.nodes[h].Height >= 0
}

// BalanceTopdown rebuilds the tree from the current leaf set using a
// top-down centroid-median split: at each level the axis of greatest
// extent among the partition's leaf centroids is chosen, leaves are
// sorted (via sort.Slice) along that axis and split in half, and the
// halves recurse. Partitions at or below topdownBalanceThreshold form a
// linear-chain subtree instead of continuing to split. Grounded on the
// axis-selection-by-centroid-extent pattern in
// other_examples/ImVexed-dyntree__tree.go's SplitAxisOpt.
func (t *Tree) BalanceTopdown() {
	leaves := t.collectLeaves()
	t.root = t.buildTopdown(leaves)
	if t.root != NullHandle {
		t.arena.Get(t.root).Parent = NullHandle
	}
	t.incrementalCursor = NullHandle
}

// collectLeaves walks the current tree, freeing every internal node along
// the way, and returns the handles of the surviving leaves.
func (t *Tree) collectLeaves() []Handle {
	var leaves []Handle
	if t.root == NullHandle {
		return leaves
	}
	stack := []Handle{t.root}
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.arena.Get(h)
		if n.IsLeaf() {
			leaves = append(leaves, h)
		} else {
			stack = append(stack, n.Children[0], n.Children[1])
			t.arena.Free(h)
		}
	}
	return leaves
}

func (t *Tree) buildTopdown(leaves []Handle) Handle {
	switch {
	case len(leaves) == 0:
		return NullHandle
	case len(leaves) == 1:
		return leaves[0]
	case len(leaves) <= t.topdownBalanceThreshold:
		return t.buildChain(leaves)
	}

	mid := t.splitLeaves(leaves)
	left := t.buildTopdown(leaves[:mid])
	right := t.buildTopdown(leaves[mid:])
	return t.join(left, right)
}

// buildChain nests leaves pairwise into a linear chain of internal nodes,
// the terminal-partition shape used once a split is small enough.
func (t *Tree) buildChain(leaves []Handle) Handle {
	cur := leaves[0]
	for i := 1; i < len(leaves); i++ {
		cur = t.join(cur, leaves[i])
	}
	return cur
}

func (t *Tree) join(a, b Handle) Handle {
	h := t.arena.Allocate()
	an := t.arena.Get(a)
	bn := t.arena.Get(b)
	n := t.arena.Get(h)
	n.Children = [2]Handle{a, b}
	n.BV = an.BV.Merge(bn.BV)
	n.Height = 1 + max(an.Height, bn.Height)
	an.Parent = h
	bn.Parent = h
	return h
}

// splitLeaves sorts leaves in place by centroid along the axis of greatest
// centroid extent and returns the median split index.
func (t *Tree) splitLeaves(leaves []Handle) int {
	minC := t.arena.Get(leaves[0]).BV.Center()
	maxC := minC
	for _, h := range leaves[1:] {
		c := t.arena.Get(h).BV.Center()
		minC = vecMin(minC, c)
		maxC = vecMax(maxC, c)
	}
	extent := maxC.Sub(minC)

	axis := 0
	best := extent.X
	if extent.Y > best {
		axis, best = 1, extent.Y
	}
	if extent.Z > best {
		axis = 2
	}

	sort.Slice(leaves, func(i, j int) bool {
		ci := axisValue(t.arena.Get(leaves[i]).BV.Center(), axis)
		cj := axisValue(t.arena.Get(leaves[j]).BV.Center(), axis)
		return ci < cj
	})

	return len(leaves) / 2
}

func axisValue(v r3.Vector, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Height returns the root's height, matching B2DynamicTree.GetHeight
// (CollisionB2DynamicTree.go:621-627).
func (t *Tree) Height() int {
	if t.root == NullHandle {
		return 0
	}
	return t.arena.Get(t.root).Height
}

// MaxBalance reports the worst per-node child-height imbalance in the
// tree, ported from B2DynamicTree.GetMaxBalance
// (CollisionB2DynamicTree.go:739-756).
func (t *Tree) MaxBalance() int {
	maxBalance := 0
	for i := range t.arena.nodes {
		n := &t.arena.nodes[i]
		if n.Height <= 1 {
			continue
		}
		c1 := t.arena.Get(n.Children[0])
		c2 := t.arena.Get(n.Children[1])
		balance := c2.Height - c1.Height
		if balance < 0 {
			balance = -balance
		}
		if balance > maxBalance {
			maxBalance = balance
		}
	}
	return maxBalance
}

// AreaRatio is the ratio of total node surface area to root surface area,
// a tree-quality metric ported from B2DynamicTree.GetAreaRatio
// (CollisionB2DynamicTree.go:630-650).
func (t *Tree) AreaRatio() float64 {
	if t.root == NullHandle {
		return 0
	}
	rootArea := t.arena.Get(t.root).BV.Size()
	if rootArea == 0 {
		return 0
	}
	total := 0.0
	for i := range t.arena.nodes {
		if t.arena.nodes[i].Height < 0 {
			continue
		}
		total += t.arena.nodes[i].BV.Size()
	}
	return total / rootArea
}

// Validate panics (via assertf) on the first violated structural or
// metric check, ported from B2DynamicTree.ValidateStructure/ValidateMetrics
// (CollisionB2DynamicTree.go:670-734).
func (t *Tree) Validate() {
	t.validateStructure(t.root, NullHandle)
	t.validateMetrics(t.root)
}

func (t *Tree) validateStructure(h, expectParent Handle) {
	if h == NullHandle {
		return
	}
	n := t.arena.Get(h)
	assertf(n.Parent == expectParent, "tree: node %d has parent %d, want %d", h, n.Parent, expectParent)
	if n.IsLeaf() {
		return
	}
	t.validateStructure(n.Children[0], h)
	t.validateStructure(n.Children[1], h)
}

func (t *Tree) validateMetrics(h Handle) {
	if h == NullHandle {
		return
	}
	n := t.arena.Get(h)
	if n.IsLeaf() {
		assertf(n.Height == 0, "tree: leaf %d has height %d, want 0", h, n.Height)
		return
	}
	c1 := t.arena.Get(n.Children[0])
	c2 := t.arena.Get(n.Children[1])
	wantHeight := 1 + max(c1.Height, c2.Height)
	assertf(n.Height == wantHeight, "tree: node %d has height %d, want %d", h, n.Height, wantHeight)
	want := c1.BV.Merge(c2.BV)
	assertf(want == n.BV, "tree: node %d bv %v does not equal union of children, want %v", h, n.BV, want)
	t.validateMetrics(n.Children[0])
	t.validateMetrics(n.Children[1])
}
