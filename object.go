package broadphase

// GeometryKind discriminates the narrow-phase geometry a leaf payload
// carries, replacing the source's getNodeType() switch/downcast with a
// small enum the manager can dispatch on without type assertions in the
// common case.
type GeometryKind int

const (
	// GeometryGeneric covers any shape whose broad-phase handling is the
	// plain AABB-leaf path.
	GeometryGeneric GeometryKind = iota
	// GeometryOctree marks an object backed by a hierarchical occupancy
	// grid, eligible for the specialized grid traversal.
	GeometryOctree
)

// Object is the capability set a leaf payload must expose: current AABB,
// current pose, and a discriminator the manager uses to pick a traversal.
// The tree and traversals never interpret Data beyond this interface.
type Object interface {
	AABB() AABB
	Transform() Pose
	GeometryKind() GeometryKind

	// IsFree reports whether this object's own geometry represents known
	// free space (as opposed to an occupied or ordinary solid object).
	// Grid traversal consults this for the leaf-vs-absent-octant case: an
	// absent grid child is collidable by default, but a free-space leaf
	// never collides with anything. Almost every object answers false.
	IsFree() bool
}

// OctreeObject is the additional capability an Object must expose to be
// dispatched to the hierarchical-grid traversal.
type OctreeObject interface {
	Object
	OctreeRoot() *GridNode
	OctreeRootBV() AABB
	DefaultOccupancy() float64
}
