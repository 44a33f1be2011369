package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"

	"github.com/wispengine/wisp/codec"
)

type ComponentID int

// Component is the interface the user needs to implement to create a new
// component type. Lookup by type goes through the registered name rather than
// runtime type identity.
type Component interface {
	// Name returns the name of the component.
	Name() string
}

// ComponentMetadata wraps the user-defined Component struct and provides the
// functionality the engine needs internally: a stable id, a default value
// constructor, a codec, and the serialized schema captured at registration.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the ComponentID of this component. It must only be set once.
	SetID(ComponentID) error
	// ID returns the ComponentID of the component.
	ID() ComponentID
	// New returns the default value for the component struct.
	New() any
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Component
}

type componentMetadata[T Component] struct {
	id      ComponentID
	isIDSet bool
	name    string
	schema  []byte
}

// NewComponentMetadata creates a new component metadata for the component
// type T. The JSON schema of T is captured here so later registrations of the
// same name can be validated against it.
func NewComponentMetadata[T Component]() (ComponentMetadata, error) {
	var t T
	schema, err := SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}
	return &componentMetadata[T]{
		id:     -1,
		name:   t.Name(),
		schema: schema,
	}, nil
}

func (c *componentMetadata[T]) SetID(id ComponentID) error {
	if c.isIDSet {
		// In games implemented with wisp, components will only be initialized
		// one time (on startup). In tests, components may be initialized more
		// than once.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %d, cannot change to %d", c.name, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

func (c *componentMetadata[T]) ID() ComponentID {
	return c.id
}

func (c *componentMetadata[T]) Name() string {
	return c.name
}

func (c *componentMetadata[T]) New() any {
	var t T
	return t
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid returns true if the two serialized schemas are equivalent.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}

// ConvertComponentMetadatasToComponents casts a slice of ComponentMetadata
// into a slice of Component.
func ConvertComponentMetadatasToComponents(comps []ComponentMetadata) []Component {
	ret := make([]Component, len(comps))
	for i, comp := range comps {
		ret[i] = comp
	}
	return ret
}
