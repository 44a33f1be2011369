package filter

import (
	"github.com/wispengine/wisp/types"
)

// ComponentFilter is a filter that filters entities based on their components.
type ComponentFilter interface {
	// MatchesComponents returns true if the entity matches the filter.
	MatchesComponents(components []types.Component) bool
}

// Component returns the zero value of the component type T, usable anywhere
// a filter expects a types.Component to match against.
func Component[T types.Component]() types.Component {
	var x T
	return x
}
