package wisp

// Stage is a named phase of the frame. Startup-class stages run exactly once
// when the world starts; the rest run every frame in the order listed here.
type Stage int

const (
	// PreStartup and Startup run once, before the first frame.
	PreStartup Stage = iota
	Startup

	PreUpdate
	// FixedUpdate runs zero or more times per frame, driven by the fixed
	// timestep accumulator rather than the frame rate.
	FixedUpdate
	Update
	PostUpdate
	PreRender
	Render
	PostRender
	Last
)

// startupStages run once, in order, before the first frame.
var startupStages = []Stage{PreStartup, Startup}

// frameStages run every frame, in order. FixedUpdate is absent here: the
// frame loop interleaves it after PreUpdate as many times as the accumulator
// allows.
var frameStages = []Stage{PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Last}

func (s Stage) String() string {
	switch s {
	case PreStartup:
		return "PreStartup"
	case Startup:
		return "Startup"
	case PreUpdate:
		return "PreUpdate"
	case FixedUpdate:
		return "FixedUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case PreRender:
		return "PreRender"
	case Render:
		return "Render"
	case PostRender:
		return "PostRender"
	case Last:
		return "Last"
	}
	return "Unknown"
}
