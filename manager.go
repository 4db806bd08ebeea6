package broadphase

import (
	"math"

	"github.com/golang/geo/r3"
	"go.uber.org/zap"
)

// Manager is the dynamic-AABB-tree broad-phase collision manager: the
// top-level type wrapping a Tree, its object table, and its tunables.
// Ported in spirit from B2BroadPhase (CollisionB2BroadPhase.go) and in
// operation set from DynamicAABBTreeCollisionManager_Array
// (broadphase_dynamic_AABB_tree_array-inl.h).
type Manager struct {
	tree    *Tree
	objects objectTable
	cfg     Config

	setupDone bool
}

// NewManager constructs a Manager with the given options applied over
// DefaultConfig(). Returns an error if the resulting configuration is
// invalid (see Config.validate).
func NewManager(opts ...Option) (*Manager, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Manager{
		tree:    NewTree(cfg.TreeTopdownBalanceThreshold, cfg.TreeTopdownLevel),
		objects: newObjectTable(),
		cfg:     cfg,
	}, nil
}

// RegisterObjects registers a batch of objects. If the manager is
// currently empty, it bulk-constructs the tree via Tree.InitFromLeaves
// (cheaper than len(objs) incremental inserts); otherwise it falls back
// to inserting one at a time. Ported from registerObjects
// (broadphase_dynamic_AABB_tree_array-inl.h).
func (m *Manager) RegisterObjects(objs []Object) {
	if len(objs) == 0 {
		return
	}
	if len(m.objects) == 0 {
		specs := make([]LeafSpec, len(objs))
		for i, o := range objs {
			specs[i] = LeafSpec{BV: o.AABB(), Data: o}
		}
		handles := m.tree.InitFromLeaves(specs)
		for i, o := range objs {
			m.objects.set(o, handles[i])
		}
		m.cfg.logger.Debug("bulk-registered objects", zap.Int("count", len(objs)))
		m.setupDone = true
	} else {
		for _, o := range objs {
			m.RegisterObject(o)
		}
		m.setupDone = false
	}
}

// RegisterObject registers a single object.
func (m *Manager) RegisterObject(obj Object) {
	h := m.tree.Insert(obj.AABB(), obj)
	m.objects.set(obj, h)
	m.setupDone = false
}

// UnregisterObject removes obj. A no-op if obj was never registered (see
// objectTable's doc comment for why a miss is silent rather than an
// error).
func (m *Manager) UnregisterObject(obj Object) {
	h, ok := m.objects.lookup(obj)
	if !ok {
		return
	}
	m.tree.Remove(h)
	m.objects.delete(obj)
	m.setupDone = false
}

// Update refreshes every registered object's leaf AABB from its current
// AABB() and refits the whole tree bottom-up, without re-checking
// per-leaf containment. Ported from update() (DynamicAABBTreeCollisionManager_Array).
func (m *Manager) Update() {
	for obj, h := range m.objects {
		m.tree.SetLeafBV(h, obj.AABB())
	}
	m.tree.Refit()
	m.setupDone = false
	m.Setup()
}

// UpdateObject refreshes a single object's leaf via Tree.Update's
// contains-check rule: a no-op if the leaf's fat AABB still contains the
// object's current AABB, otherwise a detach+reinsert. A no-op if obj was
// never registered. Ported from update_(obj) (DynamicAABBTreeCollisionManager_Array).
func (m *Manager) UpdateObject(obj Object) {
	h, ok := m.objects.lookup(obj)
	if !ok {
		return
	}
	if m.tree.Update(h, obj.AABB()) {
		m.setupDone = false
	}
	m.Setup()
}

// UpdateObjects refreshes a batch of objects via Tree.Update, then calls
// Setup once for the whole batch rather than after each object.
func (m *Manager) UpdateObjects(objs []Object) {
	for _, o := range objs {
		h, ok := m.objects.lookup(o)
		if !ok {
			continue
		}
		if m.tree.Update(h, o.AABB()) {
			m.setupDone = false
		}
	}
	m.Setup()
}

// Setup performs the pending rebalance: it chooses between a bounded
// incremental pass and a full top-down rebuild by comparing the tree's
// height against log2(n) + MaxTreeNonbalancedLevel, then marks the tree
// current. A no-op if nothing changed since the last Setup call. Ported
// from setup() (DynamicAABBTreeCollisionManager_Array).
func (m *Manager) Setup() {
	if m.setupDone {
		return
	}
	if n := m.tree.Size(); n > 0 {
		nonbalanced := float64(m.tree.Height()) - math.Log2(float64(n))
		if nonbalanced < float64(m.cfg.MaxTreeNonbalancedLevel) {
			m.tree.BalanceIncremental(m.cfg.TreeIncrementalBalancePass)
		} else {
			m.cfg.logger.Debug("rebuilding tree top-down", zap.Int("size", n))
			m.tree.BalanceTopdown()
		}
	}
	m.setupDone = true
}

// Clear removes every registered object.
func (m *Manager) Clear() {
	m.tree.Clear()
	m.objects = newObjectTable()
	m.setupDone = false
}

// GetObjects returns every currently registered object, in no particular
// order.
func (m *Manager) GetObjects() []Object {
	objs := make([]Object, 0, len(m.objects))
	for obj := range m.objects {
		objs = append(objs, obj)
	}
	return objs
}

// Empty reports whether the manager holds no registered objects.
func (m *Manager) Empty() bool {
	return len(m.objects) == 0
}

// Size returns the number of registered objects.
func (m *Manager) Size() int {
	return len(m.objects)
}

// ShiftOrigin rebases every stored AABB by -origin. Supplemented from
// box2d's ShiftOrigin (CollisionB2DynamicTree.go), a large-world feature
// the distillation dropped.
func (m *Manager) ShiftOrigin(origin r3.Vector) {
	m.tree.ShiftOrigin(origin)
}

// Collide runs a single-query collision traversal of query against every
// registered object, invoking cb for each overlapping candidate pair
// until cb returns true or the tree is exhausted. If query implements
// OctreeObject and is not masked out by OctreeAsGeometryCollide, the
// hierarchical-grid traversal is used instead of the plain AABB path.
// Ported from collide(obj, cdata, callback) (DynamicAABBTreeCollisionManager_Array).
func (m *Manager) Collide(query Object, cb CollisionCallback) {
	m.Setup()
	if m.tree.Empty() {
		return
	}
	if query.GeometryKind() == GeometryOctree && !m.cfg.OctreeAsGeometryCollide {
		if oq, ok := query.(OctreeObject); ok {
			gridCollide(m.tree, m.tree.Root(), oq, cb)
			return
		}
	}
	collisionRecurseQuery(m.tree, m.tree.Root(), query, query.AABB(), cb)
}

// Distance runs a single-query nearest-pair search between query and
// every registered object, returning the smallest distance any
// DistanceCallback invocation reported. Ported from distance(obj, ...).
func (m *Manager) Distance(query Object, cb DistanceCallback) float64 {
	m.Setup()
	minDist := math.Inf(1)
	if m.tree.Empty() {
		return minDist
	}
	if query.GeometryKind() == GeometryOctree && !m.cfg.OctreeAsGeometryDistance {
		if oq, ok := query.(OctreeObject); ok {
			gridDistance(m.tree, m.tree.Root(), oq, cb, &minDist)
			return minDist
		}
	}
	distanceRecurseQuery(m.tree, m.tree.Root(), query, query.AABB(), cb, &minDist)
	return minDist
}

// CollideSelf enumerates every overlapping pair among the manager's own
// registered objects. Ported from collide(cdata, callback) (self).
func (m *Manager) CollideSelf(cb CollisionCallback) {
	m.Setup()
	if m.tree.Empty() {
		return
	}
	selfCollisionRecurse(m.tree, m.tree.Root(), cb)
}

// DistanceSelf finds the nearest pair among the manager's own registered
// objects. Ported from distance(cdata, callback) (self).
func (m *Manager) DistanceSelf(cb DistanceCallback) float64 {
	m.Setup()
	minDist := math.Inf(1)
	if !m.tree.Empty() {
		selfDistanceRecurse(m.tree, m.tree.Root(), cb, &minDist)
	}
	return minDist
}

// CollideWith enumerates every overlapping pair (a, b) with a drawn from
// m and b drawn from other. Ported from collide(other_manager, cdata,
// callback).
func (m *Manager) CollideWith(other *Manager, cb CollisionCallback) {
	m.Setup()
	other.Setup()
	if m.tree.Empty() || other.tree.Empty() {
		return
	}
	collisionRecurse(m.tree, m.tree.Root(), other.tree, other.tree.Root(), cb)
}

// DistanceWith finds the nearest pair (a, b) with a drawn from m and b
// drawn from other. Ported from distance(other_manager, cdata, callback).
func (m *Manager) DistanceWith(other *Manager, cb DistanceCallback) float64 {
	m.Setup()
	other.Setup()
	minDist := math.Inf(1)
	if !m.tree.Empty() && !other.tree.Empty() {
		distanceRecurse(m.tree, m.tree.Root(), other.tree, other.tree.Root(), cb, &minDist)
	}
	return minDist
}
