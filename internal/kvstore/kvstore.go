// Package kvstore implements the untyped singleton cache a constraint
// system carries for its callers.
//
// It is without synchronization and allows any comparable keys. Gadget-style
// helpers use it to allocate shared state once per system, a lookup table
// registered on first use for example, keyed by an unexported struct type so
// keys cannot collide across packages.
package kvstore

import (
	"reflect"
)

type Store interface {
	SetKeyValue(key, value any)
	GetKeyValue(key any) (value any)
}

type impl map[any]any

func New() Store {
	return make(impl)
}

func (c impl) SetKeyValue(key, value any) {
	assertComparable(key)
	c[key] = value
}

func (c impl) GetKeyValue(key any) any {
	assertComparable(key)
	return c[key]
}

func assertComparable(key any) {
	if !reflect.TypeOf(key).Comparable() {
		panic("key type not comparable")
	}
}

// Value retrieves the entry stored under key and asserts its type. The
// boolean reports whether an entry of that type was present.
func Value[T any](s Store, key any) (T, bool) {
	v, ok := s.GetKeyValue(key).(T)
	return v, ok
}
