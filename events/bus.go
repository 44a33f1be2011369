// Package events implements the frame-scoped event bus. Writes land in a
// staging buffer that is invisible to readers; at the frame boundary the
// staging buffer becomes the readable buffer and the previous readable buffer
// is dropped. An event is therefore visible for exactly one frame, the frame
// after it was written.
package events

import (
	"reflect"
)

// Bus is a double-buffered event bus keyed by event type. It is not safe for
// concurrent use; the scheduler runs systems sequentially and swaps buffers
// between frames.
type Bus struct {
	staging  map[reflect.Type][]any
	readable map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		staging:  make(map[reflect.Type][]any),
		readable: make(map[reflect.Type][]any),
	}
}

// Write stages an event. It becomes readable after the next Apply and is
// dropped at the Apply after that.
func Write[E any](b *Bus, event E) {
	t := reflect.TypeOf((*E)(nil)).Elem()
	b.staging[t] = append(b.staging[t], event)
}

// Read returns this frame's events of type E in write order.
func Read[E any](b *Bus) []E {
	t := reflect.TypeOf((*E)(nil)).Elem()
	stored := b.readable[t]
	if len(stored) == 0 {
		return nil
	}
	events := make([]E, len(stored))
	for i, e := range stored {
		events[i] = e.(E)
	}
	return events
}

// HasAny reports whether any event of type E is readable this frame.
func HasAny[E any](b *Bus) bool {
	t := reflect.TypeOf((*E)(nil)).Elem()
	return len(b.readable[t]) > 0
}

// Apply swaps the buffers: staged events become readable and last frame's
// events are dropped. Called once per frame by the scheduler.
func (b *Bus) Apply() {
	b.readable = b.staging
	b.staging = make(map[reflect.Type][]any)
}

// StagedCount returns the number of staged events of a runtime type. Exposed
// for debug dumps.
func (b *Bus) StagedCount(t reflect.Type) int {
	return len(b.staging[t])
}
