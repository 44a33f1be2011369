package storage

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/wispengine/wisp/filter"
	"github.com/wispengine/wisp/types"
)

// Store is the live archetype storage: the component registry, the archetype
// index, and the entity tracking table. Structural mutations (spawn, despawn,
// component insert/remove) relocate entities between archetypes and update
// the tracking table atomically with the move.
//
// Archetypes are created on demand and never destroyed, so archetype ids are
// stable and the index is append-only; query caches rely on that.
type Store struct {
	tracking *Tracking

	registry   map[string]types.ComponentMetadata
	registered []types.ComponentMetadata

	archetypes []*Archetype
	archIndex  map[string]types.ArchetypeID

	currentTick func() types.Tick
}

// NewStore creates an empty store. currentTick is consulted whenever a
// component value is stamped.
func NewStore(currentTick func() types.Tick) *Store {
	return &Store{
		tracking:    NewTracking(),
		registry:    make(map[string]types.ComponentMetadata),
		archIndex:   make(map[string]types.ArchetypeID),
		currentTick: currentTick,
	}
}

func (s *Store) Tracking() *Tracking {
	return s.tracking
}

// stampTick returns the tick used for change stamping. Tick 0 only occurs
// during startup; values written then are stamped with 1 so they still read
// as "changed" to systems that have never run.
func (s *Store) stampTick() types.Tick {
	t := s.currentTick()
	if t < 1 {
		return 1
	}
	return t
}

// RegisterComponent adds a component to the registry and assigns its id.
// Registering the same name twice is a no-op when the schema is unchanged and
// an error when it differs.
func (s *Store) RegisterComponent(meta types.ComponentMetadata) error {
	if existing, ok := s.registry[meta.Name()]; ok {
		valid, err := types.IsSchemaValid(existing.GetSchema(), meta.GetSchema())
		if err != nil {
			return eris.Wrapf(err, "failed to compare schema for component %q", meta.Name())
		}
		if !valid {
			return eris.Wrapf(ErrComponentSchemaChanged, "component %q", meta.Name())
		}
		return nil
	}
	if err := meta.SetID(types.ComponentID(len(s.registered))); err != nil {
		return err
	}
	s.registry[meta.Name()] = meta
	s.registered = append(s.registered, meta)
	return nil
}

// ComponentByName returns the registered metadata for the named component.
func (s *Store) ComponentByName(name string) (types.ComponentMetadata, error) {
	meta, ok := s.registry[name]
	if !ok {
		return nil, eris.Wrapf(ErrMustRegisterComponent, "component %q", name)
	}
	return meta, nil
}

// RegisteredComponents returns all registered component metadata in id order.
func (s *Store) RegisteredComponents() []types.ComponentMetadata {
	return s.registered
}

func archetypeKey(metas []types.ComponentMetadata) string {
	names := make([]string, len(metas))
	for i, m := range metas {
		names[i] = m.Name()
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// archetypeFor returns the archetype storing exactly the given component set,
// creating it if it does not exist yet.
func (s *Store) archetypeFor(metas []types.ComponentMetadata) *Archetype {
	key := archetypeKey(metas)
	if id, ok := s.archIndex[key]; ok {
		return s.archetypes[id]
	}
	id := types.ArchetypeID(len(s.archetypes))
	arch := newArchetype(id, metas)
	s.archetypes = append(s.archetypes, arch)
	s.archIndex[key] = id
	return arch
}

// ArchetypeCount returns the number of archetypes ever created.
func (s *Store) ArchetypeCount() int {
	return len(s.archetypes)
}

// Archetype returns the archetype with the given id.
func (s *Store) Archetype(id types.ArchetypeID) *Archetype {
	return s.archetypes[id]
}

// SearchFrom returns the ids of archetypes at index >= seen whose component
// set matches the filter. Used by the query engine's append-only cache.
func (s *Store) SearchFrom(f filter.ComponentFilter, seen int) []types.ArchetypeID {
	var matches []types.ArchetypeID
	for i := seen; i < len(s.archetypes); i++ {
		if f.MatchesComponents(s.archetypes[i].componentSet()) {
			matches = append(matches, s.archetypes[i].ID())
		}
	}
	return matches
}

// EntitiesAt returns the entity ids stored in the archetype, in slot order.
func (s *Store) EntitiesAt(id types.ArchetypeID) []types.EntityID {
	return s.archetypes[id].Entities()
}

// SlotChangedSince reports whether every named component in the given slot
// was changed after the since tick.
func (s *Store) SlotChangedSince(id types.ArchetypeID, slot int, names []string, since types.Tick) (bool, error) {
	arch := s.archetypes[id]
	for _, name := range names {
		col, ok := arch.ColumnOf(name)
		if !ok {
			return false, eris.Wrapf(ErrComponentNotOnEntity, "component %q not in archetype %d", name, id)
		}
		if !arch.changedAt(col, slot).After(since) {
			return false, nil
		}
	}
	return true, nil
}

// metasFor resolves components to their registered metadata.
func (s *Store) metasFor(comps []types.Component) ([]types.ComponentMetadata, error) {
	metas := make([]types.ComponentMetadata, 0, len(comps))
	for _, c := range comps {
		meta, err := s.ComponentByName(c.Name())
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Create allocates a fresh entity id and stores the entity with the given
// component values.
func (s *Store) Create(comps ...types.Component) (types.EntityID, error) {
	metas, err := s.metasFor(comps)
	if err != nil {
		return types.EntityID{}, err
	}
	id := s.tracking.NewID()
	s.place(id, metas, valuesByName(comps))
	return id, nil
}

// CreateAt materializes an entity at an id previously reserved by a
// Reserver. The empty component set is valid; commands insert components
// afterwards.
func (s *Store) CreateAt(id types.EntityID, comps ...types.Component) error {
	metas, err := s.metasFor(comps)
	if err != nil {
		return err
	}
	if err := s.tracking.Adopt(id); err != nil {
		return err
	}
	s.place(id, metas, valuesByName(comps))
	return nil
}

func valuesByName(comps []types.Component) map[string]any {
	values := make(map[string]any, len(comps))
	for _, c := range comps {
		values[c.Name()] = c
	}
	return values
}

// place stores the entity in the archetype for the given set and tracks its
// location.
func (s *Store) place(id types.EntityID, metas []types.ComponentMetadata, values map[string]any) {
	arch := s.archetypeFor(metas)
	slot := arch.push(id, values, s.stampTick())
	s.tracking.SetLocation(id, types.NewEntityLocation(arch.ID(), slot))
}

// Destroy removes the entity from storage and frees its id for reuse.
func (s *Store) Destroy(id types.EntityID) error {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	s.removeFromArchetype(loc)
	s.tracking.Remove(id)
	return nil
}

// removeFromArchetype removes the slot and patches the location of the
// entity that was swapped into it, returning the removed component values.
func (s *Store) removeFromArchetype(loc types.EntityLocation) map[string]any {
	arch := s.archetypes[loc.ArchID]
	values, moved, hasMoved := arch.swapRemove(loc.Slot)
	if hasMoved {
		s.tracking.SetLocation(moved, loc)
	}
	return values
}

// AddComponent sets the component on the entity. If the entity already has
// the component the value is overwritten in place; otherwise the entity is
// moved to the archetype that includes it.
func (s *Store) AddComponent(meta types.ComponentMetadata, id types.EntityID, value any) error {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	arch := s.archetypes[loc.ArchID]
	if col, has := arch.ColumnOf(meta.Name()); has {
		arch.setValue(col, loc.Slot, value, s.stampTick())
		return nil
	}

	values := s.removeFromArchetype(loc)
	values[meta.Name()] = value
	metas := append([]types.ComponentMetadata{meta}, arch.Components()...)
	s.place(id, metas, values)
	return nil
}

// RemoveComponent removes the component from the entity, moving it to the
// archetype without it.
func (s *Store) RemoveComponent(meta types.ComponentMetadata, id types.EntityID) error {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	arch := s.archetypes[loc.ArchID]
	if !arch.hasComponent(meta.Name()) {
		return eris.Wrapf(ErrComponentNotOnEntity, "component %q on entity %s", meta.Name(), id)
	}

	values := s.removeFromArchetype(loc)
	delete(values, meta.Name())
	metas := make([]types.ComponentMetadata, 0, len(arch.Components())-1)
	for _, m := range arch.Components() {
		if m.Name() != meta.Name() {
			metas = append(metas, m)
		}
	}
	s.place(id, metas, values)
	return nil
}

// SetComponent overwrites the component value on the entity and stamps its
// changed tick. The component must already be on the entity.
func (s *Store) SetComponent(meta types.ComponentMetadata, id types.EntityID, value any) error {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	arch := s.archetypes[loc.ArchID]
	col, has := arch.ColumnOf(meta.Name())
	if !has {
		return eris.Wrapf(ErrComponentNotOnEntity, "component %q on entity %s", meta.Name(), id)
	}
	arch.setValue(col, loc.Slot, value, s.stampTick())
	return nil
}

// ComponentForEntity returns the stored component value for the entity.
func (s *Store) ComponentForEntity(meta types.ComponentMetadata, id types.EntityID) (any, error) {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return nil, eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	arch := s.archetypes[loc.ArchID]
	col, has := arch.ColumnOf(meta.Name())
	if !has {
		return nil, eris.Wrapf(ErrComponentNotOnEntity, "component %q on entity %s", meta.Name(), id)
	}
	return arch.value(col, loc.Slot), nil
}

// ComponentsForEntity returns the metadata of every component on the entity.
func (s *Store) ComponentsForEntity(id types.EntityID) ([]types.ComponentMetadata, error) {
	loc, ok := s.tracking.Location(id)
	if !ok {
		return nil, eris.Wrapf(ErrEntityDoesNotExist, "entity %s", id)
	}
	return s.archetypes[loc.ArchID].Components(), nil
}
