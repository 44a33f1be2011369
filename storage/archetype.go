package storage

import (
	"sort"

	"github.com/wispengine/wisp/types"
)

// Archetype is the columnar store for all entities sharing one exact
// component set. Every component has a column of values and a parallel column
// of last-changed ticks; both stay aligned with the entity id slice at all
// times.
type Archetype struct {
	id       types.ArchetypeID
	comps    []types.ComponentMetadata
	colIndex map[string]int
	entities []types.EntityID
	columns  [][]any
	ticks    [][]types.Tick
}

func newArchetype(id types.ArchetypeID, comps []types.ComponentMetadata) *Archetype {
	sorted := make([]types.ComponentMetadata, len(comps))
	copy(sorted, comps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	colIndex := make(map[string]int, len(sorted))
	for i, c := range sorted {
		colIndex[c.Name()] = i
	}

	return &Archetype{
		id:       id,
		comps:    sorted,
		colIndex: colIndex,
		columns:  make([][]any, len(sorted)),
		ticks:    make([][]types.Tick, len(sorted)),
	}
}

func (a *Archetype) ID() types.ArchetypeID {
	return a.id
}

// Len returns the number of entities stored in this archetype.
func (a *Archetype) Len() int {
	return len(a.entities)
}

func (a *Archetype) Components() []types.ComponentMetadata {
	return a.comps
}

// Entities returns the occupied slots in slot order. The returned slice is
// the live backing array; callers must not mutate it.
func (a *Archetype) Entities() []types.EntityID {
	return a.entities
}

// ColumnOf returns the column index for the named component.
func (a *Archetype) ColumnOf(name string) (int, bool) {
	i, ok := a.colIndex[name]
	return i, ok
}

func (a *Archetype) hasComponent(name string) bool {
	_, ok := a.colIndex[name]
	return ok
}

// push appends an entity with the given component values and returns its
// slot. Components absent from values get the metadata default.
func (a *Archetype) push(id types.EntityID, values map[string]any, tick types.Tick) int {
	slot := len(a.entities)
	a.entities = append(a.entities, id)
	for col, meta := range a.comps {
		v, ok := values[meta.Name()]
		if !ok {
			v = meta.New()
		}
		a.columns[col] = append(a.columns[col], v)
		a.ticks[col] = append(a.ticks[col], tick)
	}
	return slot
}

// swapRemove removes the slot by swapping the last entity into it. It returns
// the removed values keyed by component name, plus the id of the entity that
// moved into the vacated slot (if any) so the caller can fix its location.
func (a *Archetype) swapRemove(slot int) (values map[string]any, moved types.EntityID, hasMoved bool) {
	last := len(a.entities) - 1
	values = make(map[string]any, len(a.comps))
	for col, meta := range a.comps {
		values[meta.Name()] = a.columns[col][slot]
		a.columns[col][slot] = a.columns[col][last]
		a.columns[col] = a.columns[col][:last]
		a.ticks[col][slot] = a.ticks[col][last]
		a.ticks[col] = a.ticks[col][:last]
	}
	if slot != last {
		moved = a.entities[last]
		hasMoved = true
		a.entities[slot] = moved
	}
	a.entities = a.entities[:last]
	return values, moved, hasMoved
}

func (a *Archetype) value(col, slot int) any {
	return a.columns[col][slot]
}

func (a *Archetype) setValue(col, slot int, v any, tick types.Tick) {
	a.columns[col][slot] = v
	a.ticks[col][slot] = tick
}

func (a *Archetype) changedAt(col, slot int) types.Tick {
	return a.ticks[col][slot]
}

// componentSet returns the component set for filter matching.
func (a *Archetype) componentSet() []types.Component {
	return types.ConvertComponentMetadatasToComponents(a.comps)
}
