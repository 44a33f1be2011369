package storage

import (
	"fmt"

	"github.com/wispengine/wisp/types"
)

// Tracking owns the free-id pool and the index to location mapping for every
// entity that has ever been allocated. The location table only grows; freed
// indices are recycled through a generation bump, never by shrinking.
//
// None of the methods validate that the generation of the passed id matches
// the stored one. Callers must not call these with a stale id.
type Tracking struct {
	freeIDs   []types.EntityID
	locations []*types.EntityLocation
}

func NewTracking() *Tracking {
	return &Tracking{}
}

// NewID generates a new entity id, reusing a freed index with an incremented
// generation when one is available.
func (t *Tracking) NewID() types.EntityID {
	if n := len(t.freeIDs); n > 0 {
		id := t.freeIDs[n-1]
		t.freeIDs = t.freeIDs[:n-1]
		return types.NewEntityID(id.Index, id.Generation+1)
	}
	id := types.NewEntityID(uint32(len(t.locations)), 0)
	t.locations = append(t.locations, nil)
	return id
}

// SetLocation sets the location for an entity. It panics if the id's index
// was never tracked; that is a programmer error, not a recoverable state.
func (t *Tracking) SetLocation(id types.EntityID, loc types.EntityLocation) {
	if int(id.Index) >= len(t.locations) {
		panic(fmt.Sprintf("storage: setting location for untracked entity id %s", id))
	}
	l := loc
	t.locations[id.Index] = &l
}

// Location returns the location for an entity, or false for unknown or
// out-of-range indices.
func (t *Tracking) Location(id types.EntityID) (types.EntityLocation, bool) {
	if int(id.Index) >= len(t.locations) {
		return types.EntityLocation{}, false
	}
	loc := t.locations[id.Index]
	if loc == nil {
		return types.EntityLocation{}, false
	}
	return *loc, true
}

// Remove clears the entity's location, returns the prior one if any, and
// pushes the id onto the free pool for future reuse.
func (t *Tracking) Remove(id types.EntityID) (types.EntityLocation, bool) {
	if int(id.Index) >= len(t.locations) {
		return types.EntityLocation{}, false
	}
	loc := t.locations[id.Index]
	t.locations[id.Index] = nil
	t.freeIDs = append(t.freeIDs, id)
	if loc == nil {
		return types.EntityLocation{}, false
	}
	return *loc, true
}

// Len returns the size of the location table, i.e. the number of indices ever
// allocated.
func (t *Tracking) Len() int {
	return len(t.locations)
}

// Adopt claims the exact id that a Reserver predicted. A fresh index extends
// the table; a recycled index must still be sitting in the free pool with the
// predecessor generation.
func (t *Tracking) Adopt(id types.EntityID) error {
	if int(id.Index) == len(t.locations) {
		t.locations = append(t.locations, nil)
		return nil
	}
	if int(id.Index) > len(t.locations) {
		return fmt.Errorf("storage: cannot adopt id %s, index beyond table", id)
	}
	for i, free := range t.freeIDs {
		if free.Index == id.Index && free.Generation+1 == id.Generation {
			t.freeIDs = append(t.freeIDs[:i], t.freeIDs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("storage: cannot adopt id %s, index not free", id)
}

// Reserver returns a view that hands out the ids the tracker would allocate
// next, without touching the tracker itself. Used by the command buffer to
// reserve ids eagerly at record time.
func (t *Tracking) Reserver() *Reserver {
	free := make([]types.EntityID, len(t.freeIDs))
	copy(free, t.freeIDs)
	return &Reserver{
		free: free,
		next: uint32(len(t.locations)),
	}
}

// Reserver predicts id allocation against a snapshot of a Tracking. It mirrors
// NewID exactly: freed indices first (with a generation bump), fresh indices
// after.
type Reserver struct {
	free  []types.EntityID
	next  uint32
	fresh int
}

// NextID reserves and returns the next id the live tracker would produce.
func (r *Reserver) NextID() types.EntityID {
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		return types.NewEntityID(id.Index, id.Generation+1)
	}
	id := types.NewEntityID(r.next, 0)
	r.next++
	r.fresh++
	return id
}

// PredictedTableLen returns the location-table length the live tracker must
// have after every reservation has been materialized.
func (r *Reserver) PredictedTableLen() int {
	return int(r.next)
}
