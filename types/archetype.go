package types

// ArchetypeID identifies the storage grouping for one exact component set.
// IDs are assigned in creation order and are never reused.
type ArchetypeID int
