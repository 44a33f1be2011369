package wisp

import (
	"path/filepath"
	"reflect"
	"runtime"
	"time"

	"github.com/rotisserie/eris"

	"github.com/wispengine/wisp/engine"
	"github.com/wispengine/wisp/statsd"
	"github.com/wispengine/wisp/types"
)

// System is user game logic, run by the scheduler during its stage. A system
// returning an error aborts the frame.
type System func(ctx WorldContext) error

// Condition gates a system. All of a system's conditions must pass for it to
// run; evaluation short-circuits on the first failure. Conditions evaluate
// against full current state every frame, so a Condition wrapped in Not is
// re-checked, not cached.
type Condition func(ctx engine.Context) bool

type registeredSystem struct {
	name       string
	fn         System
	conditions []Condition

	// lastRun is the tick this system last executed at, 0 if never. It only
	// advances when the system actually runs; frames skipped by a failed
	// condition don't count, so change detection catches up on the next run.
	lastRun types.Tick
}

// systemManager holds the registered systems, bucketed per stage in
// registration order.
type systemManager struct {
	systems map[Stage][]*registeredSystem
	names   []string

	// currentSystem is the name of the system that is currently running.
	currentSystem *string
}

func newSystemManager() *systemManager {
	return &systemManager{
		systems: make(map[Stage][]*registeredSystem),
	}
}

// systemName derives a registration name from the function symbol.
func systemName(system System) string {
	return filepath.Base(runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name())
}

// register adds a system to a stage. Duplicate names across the whole
// schedule are rejected; a name is derived from the function symbol, so
// anonymous closures registered twice collide.
func (m *systemManager) register(stage Stage, system System, conditions ...Condition) error {
	name := systemName(system)
	for _, existing := range m.names {
		if existing == name {
			return eris.Errorf("system %q is already registered", name)
		}
	}
	m.names = append(m.names, name)
	m.systems[stage] = append(m.systems[stage], &registeredSystem{
		name:       name,
		fn:         system,
		conditions: conditions,
	})
	return nil
}

// GetRegisteredSystems returns all system names in registration order.
func (m *systemManager) GetRegisteredSystems() []string {
	return m.names
}

// runStage runs every system registered for the stage in registration order.
// Each system sees its own lastRun tick and a logger tagged with its name.
func (m *systemManager) runStage(stage Stage, ctx *worldContext) error {
	stageStartTime := time.Now()
	for _, sys := range m.systems[stage] {
		sysName := sys.name
		m.currentSystem = &sysName

		sysCtx := ctx.forSystem(sys)
		if !passes(sysCtx, sys.conditions) {
			continue
		}

		systemStartTime := time.Now()
		if err := sys.fn(sysCtx); err != nil {
			m.currentSystem = nil
			return eris.Wrapf(err, "system %s generated an error", sys.name)
		}
		statsd.EmitFrameStat(systemStartTime, sys.name)
		sys.lastRun = sysCtx.CurrentTick()
	}
	m.currentSystem = nil
	statsd.EmitFrameStat(stageStartTime, stage.String())
	return nil
}

func passes(ctx engine.Context, conditions []Condition) bool {
	for _, cond := range conditions {
		if !cond(ctx) {
			return false
		}
	}
	return true
}
