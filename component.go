package wisp

import (
	"github.com/rotisserie/eris"

	"github.com/wispengine/wisp/types"
)

// RegisterComponent registers the component type T with the world's registry.
// Components must be registered before they are spawned, queried, or
// filtered. Re-registering the same name is a no-op unless the schema
// changed, which is an error.
func RegisterComponent[T types.Component](w *World) error {
	meta, err := types.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	return w.store.RegisterComponent(meta)
}

// Create spawns an entity with the given components via the command buffer.
// The returned id is final and usable immediately, but the entity itself only
// exists in storage after the current stage's commands apply.
func Create(ctx WorldContext, components ...types.Component) types.EntityID {
	return ctx.Commands().Spawn(components...)
}

// Remove despawns the entity at the next command application. Its id is
// recycled with a bumped generation.
func Remove(ctx WorldContext, id types.EntityID) {
	ctx.Commands().Despawn(id)
}

// GetComponent returns a copy of the component on the given entity. Mutating
// the copy does not touch storage; write it back with SetComponent.
func GetComponent[T types.Component](ctx WorldContext, id types.EntityID) (*T, error) {
	var t T
	meta, err := ctx.Store().ComponentByName(t.Name())
	if err != nil {
		return nil, err
	}
	value, err := ctx.Store().ComponentForEntity(meta, id)
	if err != nil {
		return nil, err
	}
	comp, ok := value.(T)
	if !ok {
		return nil, eris.Errorf("type assertion for component %q failed", t.Name())
	}
	return &comp, nil
}

// SetComponent overwrites the component value on the entity immediately and
// stamps its changed tick. The component must already be on the entity; use
// AddComponentTo to attach a new one.
func SetComponent[T types.Component](ctx WorldContext, id types.EntityID, component T) error {
	meta, err := ctx.Store().ComponentByName(component.Name())
	if err != nil {
		return err
	}
	return ctx.Store().SetComponent(meta, id, component)
}

// UpdateComponent reads the component, applies fn to it, and writes it back.
func UpdateComponent[T types.Component](ctx WorldContext, id types.EntityID, fn func(*T)) error {
	comp, err := GetComponent[T](ctx, id)
	if err != nil {
		return err
	}
	fn(comp)
	return SetComponent(ctx, id, *comp)
}

// AddComponentTo attaches the component to the entity at the next command
// application, relocating the entity to the matching archetype. If the entity
// already has the component the value is overwritten in place.
func AddComponentTo(ctx WorldContext, id types.EntityID, component types.Component) {
	ctx.Commands().AddComponent(id, component)
}

// RemoveComponentFrom detaches the component from the entity at the next
// command application.
func RemoveComponentFrom(ctx WorldContext, id types.EntityID, component types.Component) {
	ctx.Commands().RemoveComponent(id, component)
}
