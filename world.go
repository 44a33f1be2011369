// Package wisp is an in-memory Entity-Component-System runtime: archetype
// component storage behind an explicit component registry, a query engine
// with tick-based change detection, typed resources and frame-scoped events,
// deferred commands, and a stage-based frame scheduler with app-level state
// machines.
package wisp

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/wispengine/wisp/command"
	"github.com/wispengine/wisp/events"
	"github.com/wispengine/wisp/log"
	"github.com/wispengine/wisp/pool"
	"github.com/wispengine/wisp/resource"
	"github.com/wispengine/wisp/statsd"
	"github.com/wispengine/wisp/storage"
	"github.com/wispengine/wisp/types"
	"github.com/wispengine/wisp/worldstage"
)

// World owns all runtime state and drives the frame loop. Systems run
// sequentially on the frame goroutine; the worker pool is for background work
// systems submit themselves.
type World struct {
	config WorldConfig
	Logger *zerolog.Logger

	tick atomic.Uint64

	store     *storage.Store
	resources *resource.Store
	bus       *events.Bus
	systems   *systemManager
	stage     *worldstage.Manager
	pool      *pool.Pool

	// currentBuffer is the command buffer for the stage currently running.
	// It is nil outside stage execution.
	currentBuffer *command.Buffer

	stateAppliers []stateApplier
	renderState   any

	lastFrameTime time.Time
}

type stateApplier struct {
	name string
	fn   func(*resource.Store, *events.Bus)
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

// WithConfig bypasses environment loading and uses the given config.
func WithConfig(cfg WorldConfig) WorldOption {
	return func(w *World) {
		w.config = cfg
	}
}

// WithRenderState registers the embedding application's opaque render handle,
// exposed to systems through WorldContext.RenderState.
func WithRenderState(rs any) WorldOption {
	return func(w *World) {
		w.renderState = rs
	}
}

// WithLogger replaces the logger built from config.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.Logger = &logger
	}
}

// NewWorld creates a world from WISP_* environment config plus options.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := GetWorldConfig()
	if err != nil {
		return nil, err
	}
	w := &World{
		config:  cfg,
		bus:     events.NewBus(),
		systems: newSystemManager(),
		stage:   worldstage.NewManager(),
	}
	w.store = storage.NewStore(w.CurrentTick)
	w.resources = resource.NewStore(w.CurrentTick)

	for _, opt := range opts {
		opt(w)
	}

	if w.Logger == nil {
		level, err := zerolog.ParseLevel(w.config.LogLevel)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid log level %q", w.config.LogLevel)
		}
		logger := zerolog.New(os.Stderr).Level(level).With().
			Timestamp().
			Str("world_id", w.config.WorldID).
			Logger()
		if w.config.LogPretty {
			logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		w.Logger = &logger
	}

	if w.config.StatsdAddress != "" {
		if err := statsd.Init(w.config.StatsdAddress, []string{"world_id:" + w.config.WorldID}); err != nil {
			w.Logger.Warn().Err(err).Msg("failed to init statsd client, metrics are disabled")
		}
	}

	w.pool = pool.New(w.config.PoolWorkers)

	resource.Insert(w.resources, Time{})
	resource.Insert(w.resources, FixedTime{Interval: w.config.FixedInterval()})

	return w, nil
}

// CurrentTick returns the tick currently being executed.
func (w *World) CurrentTick() types.Tick {
	return types.Tick(w.tick.Load())
}

// Resources returns the world's resource store. Part of the state.Registrar
// surface; systems should go through their context instead.
func (w *World) Resources() *resource.Store {
	return w.resources
}

// Store returns the live archetype storage.
func (w *World) Store() *storage.Store {
	return w.store
}

// Pool returns the world's worker pool for background tasks.
func (w *World) Pool() *pool.Pool {
	return w.pool
}

// AddStateApplier hooks a state machine's transition step into the frame
// boundary. Part of the state.Registrar surface.
func (w *World) AddStateApplier(name string, fn func(*resource.Store, *events.Bus)) {
	w.stateAppliers = append(w.stateAppliers, stateApplier{name: name, fn: fn})
}

// GetRegisteredComponents returns the metadata of every registered component.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.store.RegisteredComponents()
}

// GetRegisteredSystems returns all registered system names.
func (w *World) GetRegisteredSystems() []string {
	return w.systems.GetRegisteredSystems()
}

// RegisterSystems registers systems into a stage in the given order.
func (w *World) RegisterSystems(stage Stage, systems ...System) error {
	for _, sys := range systems {
		if err := w.systems.register(stage, sys); err != nil {
			return err
		}
	}
	return nil
}

// RegisterSystem registers one system into a stage, gated by the given run
// conditions. The system runs only on frames where every condition passes.
func (w *World) RegisterSystem(stage Stage, system System, conditions ...Condition) error {
	return w.systems.register(stage, system, conditions...)
}

// runStage runs one stage's systems and then applies the commands they
// recorded. The command buffer is scoped to the stage, so a spawn becomes
// visible to the next stage, never sooner.
func (w *World) runStage(stage Stage, ctx *worldContext) error {
	w.currentBuffer = command.NewBuffer(w.store.Tracking().Reserver())
	runErr := w.systems.runStage(stage, ctx)
	applyErr := w.currentBuffer.Apply(w.store, w.resources)
	w.currentBuffer = nil
	return errors.Join(runErr, applyErr)
}

// Startup runs the startup stages exactly once and moves the world to
// Running. Calling it a second time is an error.
func (w *World) Startup() error {
	if ok := w.stage.CompareAndSwap(worldstage.Init, worldstage.Starting); !ok {
		return eris.Errorf("startup already ran, world is in stage %q", w.stage.Current())
	}
	log.World(w.Logger, w, zerolog.InfoLevel)

	ctx := newWorldContext(w)
	for _, stage := range startupStages {
		if err := w.runStage(stage, ctx); err != nil {
			return eris.Wrapf(err, "startup stage %s failed", stage)
		}
	}
	w.endFrame()

	w.lastFrameTime = time.Now()
	w.stage.Store(worldstage.Running)
	w.Logger.Info().Msg("world is running")
	return nil
}

// Tick runs one frame: every frame stage in order, with FixedUpdate
// interleaved per the fixed timestep accumulator, then the frame boundary
// (state transitions, event promotion, tick increment).
func (w *World) Tick() error {
	if current := w.stage.Current(); current != worldstage.Running {
		return eris.Errorf("cannot tick, world is in stage %q", current)
	}
	frameStartTime := time.Now()

	now := time.Now()
	delta := now.Sub(w.lastFrameTime)
	w.lastFrameTime = now
	w.advanceTime(delta)

	ctx := newWorldContext(w)
	for _, stage := range frameStages {
		if err := w.runStage(stage, ctx); err != nil {
			return eris.Wrapf(err, "frame stage %s failed", stage)
		}
		if stage != PreUpdate {
			continue
		}
		// Fixed timestep: drain whole intervals from the accumulator, one
		// FixedUpdate pass each.
		fixed := resource.MustGetMut[FixedTime](w.resources)
		for fixed.expend() {
			if err := w.runStage(FixedUpdate, ctx); err != nil {
				return eris.Wrap(err, "frame stage FixedUpdate failed")
			}
		}
	}

	w.endFrame()
	statsd.EmitFrameStat(frameStartTime, "full_frame")
	return nil
}

// advanceTime updates the Time resource and feeds the fixed accumulator.
func (w *World) advanceTime(delta time.Duration) {
	t := resource.MustGetMut[Time](w.resources)
	t.Delta = delta
	t.Elapsed += delta
	t.Frame++

	fixed := resource.MustGetMut[FixedTime](w.resources)
	fixed.accumulate(delta)
}

// endFrame is the frame boundary: queued state transitions are applied (their
// events land in staging), staged events become readable, and the tick
// advances.
func (w *World) endFrame() {
	for _, applier := range w.stateAppliers {
		applier.fn(w.resources, w.bus)
	}
	w.bus.Apply()
	w.tick.Add(1)
}

// Run starts the world (if not already started) and ticks it at the
// configured frame interval until the context is canceled. It always shuts
// the world down before returning.
func (w *World) Run(ctx context.Context) error {
	if w.stage.Current() == worldstage.Init {
		if err := w.Startup(); err != nil {
			return err
		}
	}
	ticker := time.NewTicker(w.config.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return w.Shutdown()
		case <-ticker.C:
			if err := w.Tick(); err != nil {
				shutdownErr := w.Shutdown()
				return errors.Join(err, shutdownErr)
			}
		}
	}
}

// Shutdown stops the world and releases the worker pool. It is safe to call
// more than once; only the first call does the work.
func (w *World) Shutdown() error {
	current := w.stage.Swap(worldstage.ShuttingDown)
	if current == worldstage.ShuttingDown || current == worldstage.ShutDown {
		w.stage.Store(current)
		return nil
	}
	w.Logger.Info().Msg("shutting down")
	w.pool.Terminate()
	if err := statsd.Client().Close(); err != nil {
		w.Logger.Warn().Err(err).Msg("failed to close statsd client")
	}
	w.stage.Store(worldstage.ShutDown)
	w.Logger.Info().Msg("shutdown complete")
	return nil
}

// IsRunning reports whether the world has started and not yet begun shutting
// down.
func (w *World) IsRunning() bool {
	return w.stage.Current() == worldstage.Running
}
