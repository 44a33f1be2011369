// Package command implements the deferred mutation buffer. Systems record
// structural changes (spawns, despawns, component and resource edits) against
// a buffer during the frame; the scheduler applies the buffer at the next
// stage boundary.
//
// Spawn hands out the real entity id at record time by predicting the
// allocator through a tracking snapshot. The prediction holds as long as
// nothing allocates ids directly while a buffer is open; Apply verifies this
// and fails loudly when the books don't balance.
package command

import (
	"errors"
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/wispengine/wisp/resource"
	"github.com/wispengine/wisp/storage"
	"github.com/wispengine/wisp/types"
)

// ErrInconsistentReservation is returned by Apply when the entity table does
// not end up at the length the id reservations predicted.
var ErrInconsistentReservation = eris.New("entity id reservations out of sync with storage")

type op func(*storage.Store, *resource.Store) error

// Buffer records deferred mutations in issuance order. It is not safe for
// concurrent use; each worker or stage records into its own buffer.
type Buffer struct {
	reserver *storage.Reserver
	ops      []op
}

// NewBuffer creates a buffer whose spawns reserve ids against the given
// tracking snapshot.
func NewBuffer(reserver *storage.Reserver) *Buffer {
	return &Buffer{reserver: reserver}
}

// Len returns the number of recorded commands.
func (b *Buffer) Len() int {
	return len(b.ops)
}

// Spawn records an entity creation and returns the id the entity will have
// once the buffer is applied. The id is valid immediately for recording
// further commands against it.
func (b *Buffer) Spawn(comps ...types.Component) types.EntityID {
	id := b.reserver.NextID()
	b.ops = append(b.ops, func(s *storage.Store, _ *resource.Store) error {
		return s.CreateAt(id, comps...)
	})
	return id
}

// Despawn records the removal of an entity. The id is freed for reuse when
// the buffer is applied, not when the command is recorded.
func (b *Buffer) Despawn(id types.EntityID) {
	b.ops = append(b.ops, func(s *storage.Store, _ *resource.Store) error {
		return s.Destroy(id)
	})
}

// AddComponent records a component insert on the entity. An existing value of
// the same component is overwritten.
func (b *Buffer) AddComponent(id types.EntityID, comp types.Component) {
	b.ops = append(b.ops, func(s *storage.Store, _ *resource.Store) error {
		meta, err := s.ComponentByName(comp.Name())
		if err != nil {
			return err
		}
		return s.AddComponent(meta, id, comp)
	})
}

// RemoveComponent records a component removal from the entity.
func (b *Buffer) RemoveComponent(id types.EntityID, comp types.Component) {
	b.ops = append(b.ops, func(s *storage.Store, _ *resource.Store) error {
		meta, err := s.ComponentByName(comp.Name())
		if err != nil {
			return err
		}
		return s.RemoveComponent(meta, id)
	})
}

// InsertResource records a resource insert. Like a direct insert, it silently
// overwrites an existing value.
func InsertResource[T any](b *Buffer, value T) {
	b.ops = append(b.ops, func(_ *storage.Store, r *resource.Store) error {
		r.InsertValue(value)
		return nil
	})
}

// RemoveResource records a resource removal. Removing an absent resource is a
// no-op.
func RemoveResource[T any](b *Buffer) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.ops = append(b.ops, func(_ *storage.Store, r *resource.Store) error {
		r.RemoveType(t)
		return nil
	})
}

// Apply executes the recorded commands in issuance order, so later commands
// win when they touch the same target. A failing command does not stop the
// rest of the buffer; all failures are joined into the returned error.
//
// After the commands run, Apply checks that the entity table reached the
// length the reservations predicted. A mismatch means ids were allocated
// outside the buffer while it was open, and every id this buffer handed out
// is suspect.
func (b *Buffer) Apply(store *storage.Store, resources *resource.Store) error {
	var errs []error
	for _, o := range b.ops {
		if err := o(store, resources); err != nil {
			errs = append(errs, err)
		}
	}
	b.ops = nil

	if got, want := store.Tracking().Len(), b.reserver.PredictedTableLen(); got != want {
		errs = append(errs, eris.Wrapf(ErrInconsistentReservation,
			"entity table has %d slots, reservations predicted %d", got, want))
	}
	return errors.Join(errs...)
}
