package wisp

import (
	"time"
)

// Time tracks wall-clock frame timing. It is inserted at world construction
// and updated at the start of every frame.
type Time struct {
	// Delta is the wall-clock duration of the previous frame.
	Delta time.Duration
	// Elapsed is the total wall-clock time since the world started running.
	Elapsed time.Duration
	// Frame counts completed frames.
	Frame uint64
}

// FixedTime drives the FixedUpdate stage. Frame deltas accumulate here and
// FixedUpdate runs once per whole Interval drained, so fixed systems see a
// constant timestep regardless of frame rate.
type FixedTime struct {
	// Interval is the fixed timestep.
	Interval time.Duration
	// Accumulated is the time banked toward the next fixed step.
	Accumulated time.Duration
	// Steps counts fixed steps run since startup.
	Steps uint64
}

func (f *FixedTime) accumulate(delta time.Duration) {
	f.Accumulated += delta
}

// expend consumes one interval from the accumulator, reporting whether a
// fixed step should run.
func (f *FixedTime) expend() bool {
	if f.Interval <= 0 || f.Accumulated < f.Interval {
		return false
	}
	f.Accumulated -= f.Interval
	f.Steps++
	return true
}
