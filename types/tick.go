package types

// Tick is a monotonic frame counter. Components and resources carry the tick
// at which they last changed; change-detection filters compare that against
// the tick a system last ran at.
type Tick uint64

// After reports whether t is strictly later than other.
func (t Tick) After(other Tick) bool {
	return t > other
}
