package storage

// IDMap maps natural ids (as they appear in the source datasets) to
// store-assigned persisted ids. A map is built exactly once by a load step and
// never mutated afterwards; later steps only read it. Keeping the type
// read-only makes the id data flow auditable and trivially safe to share.
type IDMap struct {
	m map[string]int64
}

// NewIDMap builds an IDMap from a plain map. The input map is copied so later
// mutation of the argument cannot leak into the value object.
func NewIDMap(m map[string]int64) IDMap {
	cp := make(map[string]int64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return IDMap{m: cp}
}

// Lookup returns the persisted id for a natural id.
func (im IDMap) Lookup(naturalID string) (int64, bool) {
	id, ok := im.m[naturalID]
	return id, ok
}

// Len returns the number of mapped ids.
func (im IDMap) Len() int { return len(im.m) }

// OrderIDMap maps pre-persistence local order ids to store-assigned order ids.
// Same construction discipline as IDMap: built once by the order load step,
// read-only afterwards.
type OrderIDMap struct {
	m map[int]int64
}

// NewOrderIDMap builds an OrderIDMap from a plain map, copying the input.
func NewOrderIDMap(m map[int]int64) OrderIDMap {
	cp := make(map[int]int64, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return OrderIDMap{m: cp}
}

// Lookup returns the persisted order id for a local order id.
func (om OrderIDMap) Lookup(localID int) (int64, bool) {
	id, ok := om.m[localID]
	return id, ok
}

// Len returns the number of mapped ids.
func (om OrderIDMap) Len() int { return len(om.m) }
