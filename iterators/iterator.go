package iterators

import (
	"github.com/wispengine/wisp/types"
)

// ArchetypeReader is the portion of storage an entity iterator needs.
type ArchetypeReader interface {
	EntitiesAt(types.ArchetypeID) []types.EntityID
}

// EntityIterator walks a list of archetypes, yielding each archetype's
// entities in slot order.
type EntityIterator struct {
	current int
	reader  ArchetypeReader
	archIDs []types.ArchetypeID
}

func NewEntityIterator(current int, reader ArchetypeReader, archIDs []types.ArchetypeID) EntityIterator {
	return EntityIterator{
		current: current,
		reader:  reader,
		archIDs: archIDs,
	}
}

// HasNext returns true if there are more archetypes to iterate over.
func (it *EntityIterator) HasNext() bool {
	return it.current < len(it.archIDs)
}

// Next returns the entities of the next archetype.
func (it *EntityIterator) Next() []types.EntityID {
	archID := it.archIDs[it.current]
	it.current++
	return it.reader.EntitiesAt(archID)
}
