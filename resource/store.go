// Package resource implements the process-wide singleton store: at most one
// live value per type, keyed by the value's Go type.
//
// The store does not arbitrate access. Two systems holding mutable handles to
// the same resource is a caller error, not a detected fault; the scheduler's
// sequential stage execution is what keeps this sound in practice.
package resource

import (
	"fmt"
	"reflect"

	"github.com/wispengine/wisp/types"
)

type entry struct {
	value     any
	addedAt   types.Tick
	changedAt types.Tick
}

// Store holds one singleton value per type, with tick metadata for
// change-detection conditions.
type Store struct {
	entries     map[reflect.Type]*entry
	currentTick func() types.Tick
}

func NewStore(currentTick func() types.Tick) *Store {
	return &Store{
		entries:     make(map[reflect.Type]*entry),
		currentTick: currentTick,
	}
}

func (s *Store) stampTick() types.Tick {
	t := s.currentTick()
	if t < 1 {
		return 1
	}
	return t
}

func keyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Insert stores or overwrites the singleton for type T. Overwriting is
// silent; both the added and changed ticks are restamped.
func Insert[T any](s *Store, value T) {
	tick := s.stampTick()
	v := value
	s.entries[keyOf[T]()] = &entry{
		value:     &v,
		addedAt:   tick,
		changedAt: tick,
	}
}

// InsertValue stores a value whose type is only known at runtime. Used by the
// command buffer.
func (s *Store) InsertValue(value any) {
	tick := s.stampTick()
	rv := reflect.New(reflect.TypeOf(value))
	rv.Elem().Set(reflect.ValueOf(value))
	s.entries[reflect.TypeOf(value)] = &entry{
		value:     rv.Interface(),
		addedAt:   tick,
		changedAt: tick,
	}
}

// Get returns a shared handle to the resource, or false if it is absent.
func Get[T any](s *Store) (*T, bool) {
	e, ok := s.entries[keyOf[T]()]
	if !ok {
		return nil, false
	}
	return e.value.(*T), true
}

// GetMut returns an exclusive handle to the resource and marks it changed at
// the current tick, or false if it is absent.
func GetMut[T any](s *Store) (*T, bool) {
	e, ok := s.entries[keyOf[T]()]
	if !ok {
		return nil, false
	}
	e.changedAt = s.stampTick()
	return e.value.(*T), true
}

// MustGet returns a shared handle to the resource, panicking when it is
// absent. Requiring a missing resource is a configuration error.
func MustGet[T any](s *Store) *T {
	v, ok := Get[T](s)
	if !ok {
		panic(fmt.Sprintf("resource: cannot get resource %v because it does not exist", keyOf[T]()))
	}
	return v
}

// MustGetMut is the exclusive counterpart of MustGet.
func MustGetMut[T any](s *Store) *T {
	v, ok := GetMut[T](s)
	if !ok {
		panic(fmt.Sprintf("resource: cannot get resource %v because it does not exist", keyOf[T]()))
	}
	return v
}

// Remove deletes the singleton for type T, if present.
func Remove[T any](s *Store) {
	delete(s.entries, keyOf[T]())
}

// RemoveType deletes the singleton for a runtime type. Used by the command
// buffer.
func (s *Store) RemoveType(t reflect.Type) {
	delete(s.entries, t)
}

// Contains reports whether a resource of type T exists.
func Contains[T any](s *Store) bool {
	_, ok := s.entries[keyOf[T]()]
	return ok
}

// Changed reports whether the resource was changed after the since tick.
// Absent resources report false.
func Changed[T any](s *Store, since types.Tick) bool {
	e, ok := s.entries[keyOf[T]()]
	return ok && e.changedAt.After(since)
}

// Added reports whether the resource was inserted after the since tick.
// Absent resources report false.
func Added[T any](s *Store, since types.Tick) bool {
	e, ok := s.entries[keyOf[T]()]
	return ok && e.addedAt.After(since)
}

// MarkChanged stamps the resource's changed tick without handing out a
// handle.
func MarkChanged[T any](s *Store) {
	if e, ok := s.entries[keyOf[T]()]; ok {
		e.changedAt = s.stampTick()
	}
}

// Len returns the number of live resources.
func (s *Store) Len() int {
	return len(s.entries)
}
