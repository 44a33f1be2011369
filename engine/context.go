// Package engine declares the context surface systems and run conditions see.
// It sits below the root package so condition helpers can be written in their
// own packages without importing the world.
package engine

import (
	"github.com/rs/zerolog"

	"github.com/wispengine/wisp/command"
	"github.com/wispengine/wisp/events"
	"github.com/wispengine/wisp/resource"
	"github.com/wispengine/wisp/storage"
	"github.com/wispengine/wisp/types"
)

// Context is handed to every system and run condition. It is scoped to one
// invocation: the logger is tagged with the running system's name and LastRun
// reports that system's previous run tick.
type Context interface {
	// CurrentTick returns the tick currently being executed.
	CurrentTick() types.Tick

	// LastRun returns the tick at which the current system last ran, or 0 if
	// it has never run. Changed-since queries and conditions compare against
	// this.
	LastRun() types.Tick

	// Logger returns the logger for the current system.
	Logger() *zerolog.Logger

	// Commands returns the deferred mutation buffer for the current stage.
	Commands() *command.Buffer

	// Events returns the frame-scoped event bus.
	Events() *events.Bus

	// Resources returns the singleton resource store.
	Resources() *resource.Store

	// Store returns the live archetype storage.
	Store() *storage.Store
}
