package broadphase

// objectTable maps a registered Object to the arena handle of its leaf.
// Membership is the ground truth for whether an object is registered. A
// miss on lookup during unregister/update is a silent no-op, matching
// plain Go map-miss semantics.
type objectTable map[Object]Handle

func newObjectTable() objectTable {
	return make(objectTable)
}

func (t objectTable) lookup(obj Object) (Handle, bool) {
	h, ok := t[obj]
	return h, ok
}

func (t objectTable) set(obj Object, h Handle) {
	t[obj] = h
}

func (t objectTable) delete(obj Object) {
	delete(t, obj)
}
