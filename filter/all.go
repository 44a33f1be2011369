package filter

import (
	"github.com/wispengine/wisp/types"
)

type all struct{}

func All() ComponentFilter {
	return &all{}
}

func (f *all) MatchesComponents(_ []types.Component) bool {
	return true
}
