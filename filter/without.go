package filter

import (
	"github.com/wispengine/wisp/types"
)

type without struct {
	components []types.Component
}

// Without matches archetypes that contain none of the components specified.
func Without(components ...types.Component) ComponentFilter {
	return &without{components: components}
}

func (f *without) MatchesComponents(components []types.Component) bool {
	for _, componentType := range f.components {
		if MatchComponent(components, componentType) {
			return false
		}
	}
	return true
}
