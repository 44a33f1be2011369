package types

import "fmt"

// EntityID identifies an entity as an (index, generation) pair. The index
// addresses a slot in the location table and the generation is bumped every
// time the slot is recycled, so a stale id held after a despawn can never
// alias the entity that later reuses the slot.
type EntityID struct {
	Index      uint32
	Generation uint32
}

func NewEntityID(index, generation uint32) EntityID {
	return EntityID{Index: index, Generation: generation}
}

func (id EntityID) String() string {
	return fmt.Sprintf("%dv%d", id.Index, id.Generation)
}

// EntityLocation is the exact position of a live entity inside archetype
// storage. Exactly one location exists per live entity.
type EntityLocation struct {
	ArchID ArchetypeID
	Slot   int
}

func NewEntityLocation(archID ArchetypeID, slot int) EntityLocation {
	return EntityLocation{ArchID: archID, Slot: slot}
}
