// Package state implements app-level state machines. A state machine is a
// singleton per state type: the current state lives in a State[S] resource,
// requested transitions are queued in a NextState[S] resource, and the world
// applies queued transitions at the frame boundary, emitting a
// TransitionEvent[S] that is readable the following frame.
package state

import (
	"fmt"

	"github.com/wispengine/wisp/engine"
	"github.com/wispengine/wisp/events"
	"github.com/wispengine/wisp/resource"
)

// State holds the current state of one machine. Read it through Current; only
// the world's transition applier writes it.
type State[S comparable] struct {
	Current S
}

// NextState queues a requested transition. At most one transition is pending
// per machine; a later Set overwrites an earlier one in the same frame.
type NextState[S comparable] struct {
	pending bool
	value   S
}

// TransitionEvent is emitted when a machine moves between states. Same-state
// requests are dropped and emit nothing.
type TransitionEvent[S comparable] struct {
	From S
	To   S
}

// Registrar is the part of the world a state machine hooks into.
type Registrar interface {
	Resources() *resource.Store
	AddStateApplier(name string, fn func(*resource.Store, *events.Bus))
}

// Register installs a state machine for type S with the given initial state.
// Registering the same type twice resets it, like any resource overwrite.
func Register[S comparable](r Registrar, initial S) {
	res := r.Resources()
	resource.Insert(res, State[S]{Current: initial})
	resource.Insert(res, NextState[S]{})

	var zero S
	r.AddStateApplier(fmt.Sprintf("%T", zero), func(res *resource.Store, bus *events.Bus) {
		next, ok := resource.Get[NextState[S]](res)
		if !ok || !next.pending {
			return
		}
		cur := resource.MustGetMut[State[S]](res)
		from := cur.Current
		to := next.value
		next.pending = false
		if from == to {
			return
		}
		cur.Current = to
		events.Write(bus, TransitionEvent[S]{From: from, To: to})
	})
}

// Current returns the machine's current state. It panics when no machine is
// registered for S.
func Current[S comparable](ctx engine.Context) S {
	return resource.MustGet[State[S]](ctx.Resources()).Current
}

// Set queues a transition to the given state, applied at the frame boundary.
func Set[S comparable](ctx engine.Context, to S) {
	next := resource.MustGetMut[NextState[S]](ctx.Resources())
	next.pending = true
	next.value = to
}

// InState is a run condition that passes while the machine is in the given
// state.
func InState[S comparable](s S) func(engine.Context) bool {
	return func(ctx engine.Context) bool {
		return Current[S](ctx) == s
	}
}

// NotInState is the negation of InState.
func NotInState[S comparable](s S) func(engine.Context) bool {
	return func(ctx engine.Context) bool {
		return Current[S](ctx) != s
	}
}

// OnEnter passes on the frame after the machine entered the given state.
func OnEnter[S comparable](s S) func(engine.Context) bool {
	return func(ctx engine.Context) bool {
		for _, ev := range events.Read[TransitionEvent[S]](ctx.Events()) {
			if ev.To == s {
				return true
			}
		}
		return false
	}
}

// OnExit passes on the frame after the machine left the given state.
func OnExit[S comparable](s S) func(engine.Context) bool {
	return func(ctx engine.Context) bool {
		for _, ev := range events.Read[TransitionEvent[S]](ctx.Events()) {
			if ev.From == s {
				return true
			}
		}
		return false
	}
}

// OnTransition passes on the frame after the machine moved from one specific
// state to another.
func OnTransition[S comparable](from, to S) func(engine.Context) bool {
	return func(ctx engine.Context) bool {
		for _, ev := range events.Read[TransitionEvent[S]](ctx.Events()) {
			if ev.From == from && ev.To == to {
				return true
			}
		}
		return false
	}
}
