package wisp

import (
	"github.com/goccy/go-json"

	"github.com/wispengine/wisp/filter"
	"github.com/wispengine/wisp/search"
	"github.com/wispengine/wisp/types"
)

// DebugStateElement is one entity's full component state, serialized.
type DebugStateElement struct {
	ID         types.EntityID             `json:"id"`
	Components map[string]json.RawMessage `json:"components"`
}

// DebugState serializes every live entity and its components. Meant for
// inspection tooling and tests, not the hot path.
func (w *World) DebugState() ([]*DebugStateElement, error) {
	result := make([]*DebugStateElement, 0)
	s := search.New(w.store, filter.All())
	var eachErr error
	iterErr := s.Each(func(id types.EntityID) bool {
		metas, err := w.store.ComponentsForEntity(id)
		if err != nil {
			eachErr = err
			return false
		}
		components := make(map[string]json.RawMessage, len(metas))
		for _, meta := range metas {
			value, err := w.store.ComponentForEntity(meta, id)
			if err != nil {
				eachErr = err
				return false
			}
			bz, err := meta.Encode(value)
			if err != nil {
				eachErr = err
				return false
			}
			components[meta.Name()] = bz
		}
		result = append(result, &DebugStateElement{ID: id, Components: components})
		return true
	})
	if eachErr != nil {
		return nil, eachErr
	}
	if iterErr != nil {
		return nil, iterErr
	}
	return result, nil
}
