package broadphase

import "go.uber.org/zap"

// WithLogger attaches a zap logger to a Manager. Debug-level entries are
// emitted for structural events: top-down rebuilds chosen by Setup and bulk
// registration. Choosing the incremental rebalance is not logged. Defaults
// to zap.NewNop() when unset.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}
