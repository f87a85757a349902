package desktop

import "reflect"

// DataMap stores at most one value per type. It is the per-surface
// auxiliary-state map; values live as long as the surface.
type DataMap struct {
	values map[reflect.Type]any
}

// InsertIfMissing stores init() under T unless a T is already present. It
// reports whether a value was inserted.
func InsertIfMissing[T any](d *DataMap, init func() *T) bool {
	key := reflect.TypeFor[T]()
	if _, ok := d.values[key]; ok {
		return false
	}
	if d.values == nil {
		d.values = make(map[reflect.Type]any)
	}
	d.values[key] = init()
	return true
}

// Get returns the T stored in d.
func Get[T any](d *DataMap) (*T, bool) {
	v, ok := d.values[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}
