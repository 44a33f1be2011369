package storage

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/wispengine/wisp/types"
)

type position struct {
	X, Y int
}

func (position) Name() string { return "position" }

type velocity struct {
	DX, DY int
}

func (velocity) Name() string { return "velocity" }

// samePosition reuses position's registered name with a different shape.
type samePosition struct {
	X string
}

func (samePosition) Name() string { return "position" }

func newTestStore(t *testing.T, tick *types.Tick) *Store {
	t.Helper()
	store := NewStore(func() types.Tick { return *tick })
	assert.NilError(t, store.RegisterComponent(mustMetadata[position](t)))
	assert.NilError(t, store.RegisterComponent(mustMetadata[velocity](t)))
	return store
}

func mustMetadata[T types.Component](t *testing.T) types.ComponentMetadata {
	t.Helper()
	meta, err := types.NewComponentMetadata[T]()
	assert.NilError(t, err)
	return meta
}

func TestRegisterComponentAssignsSequentialIDs(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)
	vel, err := store.ComponentByName("velocity")
	assert.NilError(t, err)
	assert.Equal(t, types.ComponentID(0), pos.ID())
	assert.Equal(t, types.ComponentID(1), vel.ID())
}

func TestRegisterComponentRejectsChangedSchema(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	// Same name, same schema: no-op.
	assert.NilError(t, store.RegisterComponent(mustMetadata[position](t)))
	assert.Equal(t, 2, len(store.RegisteredComponents()))

	// Same name, different schema: rejected.
	err := store.RegisterComponent(mustMetadata[samePosition](t))
	assert.ErrorIs(t, err, ErrComponentSchemaChanged)
}

func TestUnregisteredComponentIsRejected(t *testing.T) {
	tick := types.Tick(0)
	store := NewStore(func() types.Tick { return tick })
	_, err := store.Create(position{X: 1})
	assert.ErrorIs(t, err, ErrMustRegisterComponent)
}

func TestCreateAndReadBack(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{X: 1, Y: 2}, velocity{DX: 3})
	assert.NilError(t, err)

	meta, err := store.ComponentByName("position")
	assert.NilError(t, err)
	value, err := store.ComponentForEntity(meta, id)
	assert.NilError(t, err)
	assert.Equal(t, position{X: 1, Y: 2}, value.(position))

	metas, err := store.ComponentsForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(metas))
}

func TestDestroyThenAccessFails(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{})
	assert.NilError(t, err)
	assert.NilError(t, store.Destroy(id))

	assert.ErrorIs(t, store.Destroy(id), ErrEntityDoesNotExist)
	meta, err := store.ComponentByName("position")
	assert.NilError(t, err)
	_, err = store.ComponentForEntity(meta, id)
	assert.ErrorIs(t, err, ErrEntityDoesNotExist)
}

func TestAddComponentMovesEntityBetweenArchetypes(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{X: 9})
	assert.NilError(t, err)
	assert.Equal(t, 1, store.ArchetypeCount())

	vel, err := store.ComponentByName("velocity")
	assert.NilError(t, err)
	assert.NilError(t, store.AddComponent(vel, id, velocity{DX: 4}))
	assert.Equal(t, 2, store.ArchetypeCount())

	// The carried value survives the move.
	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)
	value, err := store.ComponentForEntity(pos, id)
	assert.NilError(t, err)
	assert.Equal(t, position{X: 9}, value.(position))
}

func TestAddExistingComponentOverwritesInPlace(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{X: 1})
	assert.NilError(t, err)
	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)

	assert.NilError(t, store.AddComponent(pos, id, position{X: 2}))
	assert.Equal(t, 1, store.ArchetypeCount())
	value, err := store.ComponentForEntity(pos, id)
	assert.NilError(t, err)
	assert.Equal(t, position{X: 2}, value.(position))
}

func TestRemoveComponentMovesEntity(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{X: 1}, velocity{DX: 2})
	assert.NilError(t, err)

	vel, err := store.ComponentByName("velocity")
	assert.NilError(t, err)
	assert.NilError(t, store.RemoveComponent(vel, id))

	_, err = store.ComponentForEntity(vel, id)
	assert.ErrorIs(t, err, ErrComponentNotOnEntity)
	assert.ErrorIs(t, store.RemoveComponent(vel, id), ErrComponentNotOnEntity)
}

func TestSwapRemovePatchesMovedEntityLocation(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	first, err := store.Create(position{X: 1})
	assert.NilError(t, err)
	second, err := store.Create(position{X: 2})
	assert.NilError(t, err)

	// Destroying the first slot swaps the second entity into it.
	assert.NilError(t, store.Destroy(first))

	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)
	value, err := store.ComponentForEntity(pos, second)
	assert.NilError(t, err)
	assert.Equal(t, position{X: 2}, value.(position))

	loc, ok := store.Tracking().Location(second)
	assert.Assert(t, ok)
	assert.Equal(t, 0, loc.Slot)
}

func TestSlotChangedSinceTracksWrites(t *testing.T) {
	tick := types.Tick(5)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{})
	assert.NilError(t, err)
	loc, ok := store.Tracking().Location(id)
	assert.Assert(t, ok)

	// Stamped at creation tick 5: changed since 4, not since 5.
	changed, err := store.SlotChangedSince(loc.ArchID, loc.Slot, []string{"position"}, 4)
	assert.NilError(t, err)
	assert.Assert(t, changed)
	changed, err = store.SlotChangedSince(loc.ArchID, loc.Slot, []string{"position"}, 5)
	assert.NilError(t, err)
	assert.Assert(t, !changed)

	tick = 8
	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)
	assert.NilError(t, store.SetComponent(pos, id, position{X: 1}))
	changed, err = store.SlotChangedSince(loc.ArchID, loc.Slot, []string{"position"}, 5)
	assert.NilError(t, err)
	assert.Assert(t, changed)
}

func TestStartupWritesStampAtLeastTickOne(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	id, err := store.Create(position{})
	assert.NilError(t, err)
	loc, ok := store.Tracking().Location(id)
	assert.Assert(t, ok)

	// Values written during startup still read as changed-since-0.
	changed, err := store.SlotChangedSince(loc.ArchID, loc.Slot, []string{"position"}, 0)
	assert.NilError(t, err)
	assert.Assert(t, changed)
}

func TestCreateAtMaterializesReservedID(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	reserver := store.Tracking().Reserver()
	id := reserver.NextID()

	assert.NilError(t, store.CreateAt(id, position{X: 7}))
	pos, err := store.ComponentByName("position")
	assert.NilError(t, err)
	value, err := store.ComponentForEntity(pos, id)
	assert.NilError(t, err)
	assert.Equal(t, position{X: 7}, value.(position))
}

func TestCreateAtAcceptsEmptyComponentSet(t *testing.T) {
	tick := types.Tick(0)
	store := newTestStore(t, &tick)

	reserver := store.Tracking().Reserver()
	id := reserver.NextID()
	assert.NilError(t, store.CreateAt(id))

	metas, err := store.ComponentsForEntity(id)
	assert.NilError(t, err)
	assert.Equal(t, 0, len(metas))
}
