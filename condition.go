package wisp

import (
	"github.com/wispengine/wisp/engine"
	"github.com/wispengine/wisp/events"
	"github.com/wispengine/wisp/resource"
)

// OnEvent passes on frames where at least one event of type E is readable.
func OnEvent[E any]() Condition {
	return func(ctx engine.Context) bool {
		return events.HasAny[E](ctx.Events())
	}
}

// ResourceExists passes while a resource of type R is present.
func ResourceExists[R any]() Condition {
	return func(ctx engine.Context) bool {
		return resource.Contains[R](ctx.Resources())
	}
}

// ResourceAdded passes on frames where the resource was inserted after the
// gated system's last run. An absent resource never passes.
func ResourceAdded[R any]() Condition {
	return func(ctx engine.Context) bool {
		return resource.Added[R](ctx.Resources(), ctx.LastRun())
	}
}

// ResourceChanged passes on frames where the resource was mutated after the
// gated system's last run. An absent resource never passes.
func ResourceChanged[R any]() Condition {
	return func(ctx engine.Context) bool {
		return resource.Changed[R](ctx.Resources(), ctx.LastRun())
	}
}

// Not inverts a condition. The wrapped condition is re-evaluated against full
// current state on every frame, not cached.
func Not(cond Condition) Condition {
	return func(ctx engine.Context) bool {
		return !cond(ctx)
	}
}
