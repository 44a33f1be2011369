package search

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/wispengine/wisp/filter"
	"github.com/wispengine/wisp/storage"
	"github.com/wispengine/wisp/types"
)

type hp struct {
	Value int
}

func (hp) Name() string { return "hp" }

type armor struct {
	Value int
}

func (armor) Name() string { return "armor" }

func newTestStore(t *testing.T, tick *types.Tick) *storage.Store {
	t.Helper()
	store := storage.NewStore(func() types.Tick { return *tick })
	for _, register := range []func() (types.ComponentMetadata, error){
		types.NewComponentMetadata[hp],
		types.NewComponentMetadata[armor],
	} {
		meta, err := register()
		assert.NilError(t, err)
		assert.NilError(t, store.RegisterComponent(meta))
	}
	return store
}

func TestEachVisitsOnlyMatchingEntities(t *testing.T) {
	tick := types.Tick(1)
	store := newTestStore(t, &tick)

	bare, err := store.Create(hp{Value: 1})
	assert.NilError(t, err)
	armored, err := store.Create(hp{Value: 2}, armor{Value: 9})
	assert.NilError(t, err)

	both := New(store, filter.Contains(filter.Component[hp]()))
	count, err := both.Count()
	assert.NilError(t, err)
	assert.Equal(t, 2, count)

	onlyArmored := New(store, filter.Contains(filter.Component[armor]()))
	ids, err := onlyArmored.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{armored}, ids)

	unarmored := New(store, filter.And(
		filter.Contains(filter.Component[hp]()),
		filter.Without(filter.Component[armor]()),
	))
	ids, err = unarmored.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{bare}, ids)
}

func TestCachePicksUpArchetypesCreatedAfterFirstResolve(t *testing.T) {
	tick := types.Tick(1)
	store := newTestStore(t, &tick)

	_, err := store.Create(hp{})
	assert.NilError(t, err)

	s := New(store, filter.Contains(filter.Component[hp]()))
	count, err := s.Count()
	assert.NilError(t, err)
	assert.Equal(t, 1, count)

	// A new matching archetype appears after the cache was built.
	_, err = store.Create(hp{}, armor{})
	assert.NilError(t, err)
	count, err = s.Count()
	assert.NilError(t, err)
	assert.Equal(t, 2, count)
}

func TestFirstAndMustFirst(t *testing.T) {
	tick := types.Tick(1)
	store := newTestStore(t, &tick)

	empty := New(store, filter.Contains(filter.Component[hp]()))
	_, err := empty.First()
	assert.ErrorIs(t, err, ErrNoEntitiesFound)
	defer func() {
		assert.Assert(t, recover() != nil)
	}()
	empty.MustFirst()
}

func TestIterationOrderIsArchetypeThenSlot(t *testing.T) {
	tick := types.Tick(1)
	store := newTestStore(t, &tick)

	a, err := store.Create(hp{})
	assert.NilError(t, err)
	b, err := store.Create(hp{}, armor{})
	assert.NilError(t, err)
	c, err := store.Create(hp{})
	assert.NilError(t, err)

	ids, err := New(store, filter.Contains(filter.Component[hp]())).Collect()
	assert.NilError(t, err)
	// First archetype (hp) in slot order, then the second (hp+armor).
	assert.DeepEqual(t, []types.EntityID{a, c, b}, ids)
}

func TestChangedFilterMatchesRecentWrites(t *testing.T) {
	tick := types.Tick(3)
	store := newTestStore(t, &tick)

	stale, err := store.Create(hp{})
	assert.NilError(t, err)
	fresh, err := store.Create(hp{})
	assert.NilError(t, err)

	tick = 7
	meta, err := store.ComponentByName("hp")
	assert.NilError(t, err)
	assert.NilError(t, store.SetComponent(meta, fresh, hp{Value: 10}))

	s := New(store, filter.Contains(filter.Component[hp]()),
		WithChanged(filter.Component[hp]()),
		WithLastRun(3),
	)
	ids, err := s.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{fresh}, ids)

	// With lastRun before creation, both entities read as changed.
	all := New(store, filter.Contains(filter.Component[hp]()),
		WithChanged(filter.Component[hp]()),
		WithLastRun(0),
	)
	count, err := all.Count()
	assert.NilError(t, err)
	assert.Equal(t, 2, count)
	_ = stale
}

func TestCastReparameterizesAgainstSameStore(t *testing.T) {
	tick := types.Tick(2)
	store := newTestStore(t, &tick)

	_, err := store.Create(hp{})
	assert.NilError(t, err)
	armored, err := store.Create(hp{}, armor{})
	assert.NilError(t, err)

	wide := New(store, filter.Contains(filter.Component[hp]()), WithLastRun(1))
	count, err := wide.Count()
	assert.NilError(t, err)
	assert.Equal(t, 2, count)

	narrow := wide.Cast(filter.Contains(filter.Component[armor]()))
	ids, err := narrow.Collect()
	assert.NilError(t, err)
	assert.DeepEqual(t, []types.EntityID{armored}, ids)
	// lastRun carries over through the cast.
	assert.Equal(t, types.Tick(1), narrow.LastRun())
}
