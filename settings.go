package broadphase

import (
	"fmt"

	"go.uber.org/zap"
)

// AABBExtension fattens a leaf's stored AABB beyond the object's reported
// AABB so small pose changes don't force a remove+reinsert.
const AABBExtension = 0.1

// Config holds the manager-level tunables, applied through Option values
// passed to NewManager.
type Config struct {
	// MaxTreeNonbalancedLevel gates incremental vs. top-down rebalance in
	// setup(): incremental is used while height - log2(n) stays below this.
	MaxTreeNonbalancedLevel int
	// TreeIncrementalBalancePass bounds the number of local rotations
	// performed per setup() call when using incremental rebalance.
	TreeIncrementalBalancePass int
	// TreeTopdownBalanceThreshold is the leaf-count at or below which
	// top-down recursion stops subdividing and builds a linear-chain subtree.
	TreeTopdownBalanceThreshold int
	// TreeTopdownLevel is validated and stored on the tree. Top-down
	// construction uses the centroid-median split at every depth, so this
	// value does not change the built tree.
	TreeTopdownLevel int
	// TreeInitLevel is validated and stored. Bulk construction does not read
	// it; it always uses the same top-down build as BalanceTopdown.
	TreeInitLevel int
	// OctreeAsGeometryCollide, if true, treats an octree query object as an
	// opaque AABB leaf for collide() instead of dispatching to the grid
	// traversal.
	OctreeAsGeometryCollide bool
	// OctreeAsGeometryDistance is the same gate for distance().
	OctreeAsGeometryDistance bool

	logger *zap.Logger
}

// DefaultConfig returns the tunables at their default values.
func DefaultConfig() Config {
	return Config{
		MaxTreeNonbalancedLevel:     10,
		TreeIncrementalBalancePass:  10,
		TreeTopdownBalanceThreshold: 2,
		TreeTopdownLevel:            0,
		TreeInitLevel:               0,
		OctreeAsGeometryCollide:     true,
		OctreeAsGeometryDistance:    false,
		logger:                      zap.NewNop(),
	}
}

// Option configures a Manager at construction time.
type Option func(*Config)

// WithMaxTreeNonbalancedLevel overrides MaxTreeNonbalancedLevel.
func WithMaxTreeNonbalancedLevel(level int) Option {
	return func(c *Config) { c.MaxTreeNonbalancedLevel = level }
}

// WithTreeIncrementalBalancePass overrides TreeIncrementalBalancePass.
func WithTreeIncrementalBalancePass(passes int) Option {
	return func(c *Config) { c.TreeIncrementalBalancePass = passes }
}

// WithTreeTopdownBalanceThreshold overrides TreeTopdownBalanceThreshold.
func WithTreeTopdownBalanceThreshold(threshold int) Option {
	return func(c *Config) { c.TreeTopdownBalanceThreshold = threshold }
}

// WithTreeTopdownLevel overrides TreeTopdownLevel.
func WithTreeTopdownLevel(level int) Option {
	return func(c *Config) { c.TreeTopdownLevel = level }
}

// WithTreeInitLevel overrides TreeInitLevel.
func WithTreeInitLevel(level int) Option {
	return func(c *Config) { c.TreeInitLevel = level }
}

// WithOctreeAsGeometryCollide overrides OctreeAsGeometryCollide.
func WithOctreeAsGeometryCollide(v bool) Option {
	return func(c *Config) { c.OctreeAsGeometryCollide = v }
}

// WithOctreeAsGeometryDistance overrides OctreeAsGeometryDistance.
func WithOctreeAsGeometryDistance(v bool) Option {
	return func(c *Config) { c.OctreeAsGeometryDistance = v }
}

// assertf panics with a formatted message when cond is false. Precondition
// violations (programmer error, not recoverable state) are diagnosed this
// way rather than through a returned error, mirroring box2d's B2Assert.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
