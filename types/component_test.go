package types

import (
	"testing"

	"gotest.tools/v3/assert"
)

type energy struct {
	Amount int
	Cap    int
}

func (energy) Name() string { return "energy" }

type altEnergy struct {
	Amount string
}

func (altEnergy) Name() string { return "energy" }

func TestMetadataCapturesNameAndDefault(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	assert.NilError(t, err)
	assert.Equal(t, "energy", meta.Name())
	assert.Equal(t, energy{}, meta.New().(energy))
}

func TestIDCanOnlyBeSetOnce(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	assert.NilError(t, err)
	assert.NilError(t, meta.SetID(3))
	assert.Equal(t, ComponentID(3), meta.ID())

	// Same id again is tolerated, a different one is not.
	assert.NilError(t, meta.SetID(3))
	assert.Assert(t, meta.SetID(4) != nil)
}

func TestSchemaComparisonDetectsShapeChanges(t *testing.T) {
	a, err := NewComponentMetadata[energy]()
	assert.NilError(t, err)
	b, err := NewComponentMetadata[energy]()
	assert.NilError(t, err)
	changed, err := NewComponentMetadata[altEnergy]()
	assert.NilError(t, err)

	same, err := IsSchemaValid(a.GetSchema(), b.GetSchema())
	assert.NilError(t, err)
	assert.Assert(t, same)

	same, err = IsSchemaValid(a.GetSchema(), changed.GetSchema())
	assert.NilError(t, err)
	assert.Assert(t, !same)
}

func TestDecodeRoundTripsThroughEncode(t *testing.T) {
	meta, err := NewComponentMetadata[energy]()
	assert.NilError(t, err)

	bz, err := meta.Encode(energy{Amount: 5, Cap: 10})
	assert.NilError(t, err)
	value, err := meta.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, energy{Amount: 5, Cap: 10}, value.(energy))
}
