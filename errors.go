package broadphase

import "github.com/pkg/errors"

// validate returns an error describing the first invalid tunable, or nil.
func (c Config) validate() error {
	if c.MaxTreeNonbalancedLevel < 0 {
		return errors.Errorf("max tree nonbalanced level must be >= 0, got %d", c.MaxTreeNonbalancedLevel)
	}
	if c.TreeIncrementalBalancePass < 0 {
		return errors.Errorf("tree incremental balance pass count must be >= 0, got %d", c.TreeIncrementalBalancePass)
	}
	if c.TreeTopdownBalanceThreshold < 1 {
		return errors.Errorf("tree topdown balance threshold must be >= 1, got %d", c.TreeTopdownBalanceThreshold)
	}
	if c.TreeTopdownLevel < 0 {
		return errors.Errorf("tree topdown level must be >= 0, got %d", c.TreeTopdownLevel)
	}
	if c.TreeInitLevel < 0 {
		return errors.Errorf("tree init level must be >= 0, got %d", c.TreeInitLevel)
	}
	return nil
}
