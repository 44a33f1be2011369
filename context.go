package wisp

import (
	"github.com/rs/zerolog"

	"github.com/wispengine/wisp/command"
	"github.com/wispengine/wisp/engine"
	"github.com/wispengine/wisp/events"
	"github.com/wispengine/wisp/filter"
	"github.com/wispengine/wisp/log"
	"github.com/wispengine/wisp/resource"
	"github.com/wispengine/wisp/search"
	"github.com/wispengine/wisp/storage"
	"github.com/wispengine/wisp/types"
)

// WorldContext is the view of the world a system runs against. It narrows the
// world to the operations that are safe mid-frame: reads, searches, event and
// resource access, and deferred commands.
type WorldContext interface {
	engine.Context

	// NewSearch builds a search over live storage. The search's changed-since
	// predicates default to the running system's lastRun tick.
	NewSearch(f filter.ComponentFilter, opts ...search.Option) *search.Search

	// WorldID identifies this world instance in logs and metrics.
	WorldID() string

	// RenderState returns the opaque handle the embedding application
	// registered for its renderer, or nil.
	RenderState() any
}

type worldContext struct {
	world   *World
	logger  *zerolog.Logger
	lastRun types.Tick
}

var _ WorldContext = (*worldContext)(nil)
var _ engine.Context = (*worldContext)(nil)

func newWorldContext(world *World) *worldContext {
	return &worldContext{
		world:  world,
		logger: world.Logger,
	}
}

// forSystem scopes the context to one system invocation: its logger carries
// the system name and LastRun reports the system's previous run tick.
func (ctx *worldContext) forSystem(sys *registeredSystem) *worldContext {
	return &worldContext{
		world:   ctx.world,
		logger:  log.CreateSystemLogger(ctx.world.Logger, sys.name),
		lastRun: sys.lastRun,
	}
}

func (ctx *worldContext) CurrentTick() types.Tick {
	return ctx.world.CurrentTick()
}

func (ctx *worldContext) LastRun() types.Tick {
	return ctx.lastRun
}

func (ctx *worldContext) Logger() *zerolog.Logger {
	return ctx.logger
}

func (ctx *worldContext) Commands() *command.Buffer {
	return ctx.world.currentBuffer
}

func (ctx *worldContext) Events() *events.Bus {
	return ctx.world.bus
}

func (ctx *worldContext) Resources() *resource.Store {
	return ctx.world.resources
}

func (ctx *worldContext) Store() *storage.Store {
	return ctx.world.store
}

func (ctx *worldContext) NewSearch(f filter.ComponentFilter, opts ...search.Option) *search.Search {
	withDefaults := append([]search.Option{search.WithLastRun(ctx.lastRun)}, opts...)
	return search.New(ctx.world.store, f, withDefaults...)
}

func (ctx *worldContext) WorldID() string {
	return ctx.world.config.WorldID
}

func (ctx *worldContext) RenderState() any {
	return ctx.world.renderState
}

// NewSearch builds a search over live storage, scoped to the calling
// system's lastRun tick.
func NewSearch(ctx WorldContext, f filter.ComponentFilter, opts ...search.Option) *search.Search {
	return ctx.NewSearch(f, opts...)
}

// EmitEvent stages an event; readers see it next frame.
func EmitEvent[E any](ctx engine.Context, event E) {
	events.Write(ctx.Events(), event)
}

// ReadEvents returns this frame's events of type E in write order.
func ReadEvents[E any](ctx engine.Context) []E {
	return events.Read[E](ctx.Events())
}

// HasEvents reports whether any event of type E is readable this frame.
func HasEvents[E any](ctx engine.Context) bool {
	return events.HasAny[E](ctx.Events())
}

// GetResource returns a shared handle to the resource, or false if absent.
func GetResource[T any](ctx engine.Context) (*T, bool) {
	return resource.Get[T](ctx.Resources())
}

// GetResourceMut returns an exclusive handle and marks the resource changed.
func GetResourceMut[T any](ctx engine.Context) (*T, bool) {
	return resource.GetMut[T](ctx.Resources())
}

// MustGetResource returns the resource, panicking when it is absent.
func MustGetResource[T any](ctx engine.Context) *T {
	return resource.MustGet[T](ctx.Resources())
}

// InsertResource stores the resource immediately, overwriting any existing
// value. Use the command buffer to defer the insert to the stage boundary.
func InsertResource[T any](ctx engine.Context, value T) {
	resource.Insert(ctx.Resources(), value)
}

// RemoveResource removes the resource immediately, if present.
func RemoveResource[T any](ctx engine.Context) {
	resource.Remove[T](ctx.Resources())
}
