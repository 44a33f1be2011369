package search

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/wispengine/wisp/filter"
	"github.com/wispengine/wisp/iterators"
	"github.com/wispengine/wisp/types"
)

// BadID is returned by First when no entity matches the search.
var BadID = types.NewEntityID(math.MaxUint32, math.MaxUint32)

var ErrNoEntitiesFound = eris.New("no entities found")

// CallbackFn is invoked once per matching entity. Return false to stop the
// iteration.
type CallbackFn func(types.EntityID) bool

// Reader is the view of storage a search resolves against.
type Reader interface {
	SearchFrom(f filter.ComponentFilter, seen int) []types.ArchetypeID
	ArchetypeCount() int
	EntitiesAt(types.ArchetypeID) []types.EntityID
	SlotChangedSince(id types.ArchetypeID, slot int, names []string, since types.Tick) (bool, error)
}

type cache struct {
	archetypes []types.ArchetypeID
	seen       int
}

// Search represents a search for entities: an archetype-level component
// filter plus an optional slot-level changed-since predicate. It caches the
// matching archetypes, which is sound because the archetype index is
// append-only; reuse a Search instead of rebuilding it every frame.
//
// Iteration order is archetype creation order, then slot order. Both are
// stable within a single resolve, but slot order shifts when entities are
// despawned, so it carries no meaning across frames.
type Search struct {
	archMatches *cache
	filter      filter.ComponentFilter
	changed     []string
	lastRun     types.Tick
	reader      Reader
}

// Option configures a Search.
type Option func(*Search)

// WithChanged restricts the search to slots where every one of the given
// components changed after the search's lastRun tick.
func WithChanged(comps ...types.Component) Option {
	return func(s *Search) {
		for _, c := range comps {
			s.changed = append(s.changed, c.Name())
		}
	}
}

// WithLastRun sets the tick that changed-since predicates compare against,
// typically the tick the querying system last ran at.
func WithLastRun(t types.Tick) Option {
	return func(s *Search) {
		s.lastRun = t
	}
}

// New creates a new search over the reader with the given filter.
func New(reader Reader, f filter.ComponentFilter, opts ...Option) *Search {
	s := &Search{
		archMatches: &cache{},
		filter:      f,
		reader:      reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cast re-parameterizes the search to a different filter set against the same
// underlying store. The archetype cache is rebuilt; the lastRun tick carries
// over unless overridden.
func (s *Search) Cast(f filter.ComponentFilter, opts ...Option) *Search {
	next := &Search{
		archMatches: &cache{},
		filter:      f,
		lastRun:     s.lastRun,
		reader:      s.reader,
	}
	for _, opt := range opts {
		opt(next)
	}
	return next
}

// Each iterates over all entities that match the search in archetype order
// then slot order. Return false from the callback to stop early.
func (s *Search) Each(callback CallbackFn) error {
	result := s.evaluateSearch()
	if len(s.changed) == 0 {
		iter := iterators.NewEntityIterator(0, s.reader, result)
		for iter.HasNext() {
			for _, id := range iter.Next() {
				if !callback(id) {
					return nil
				}
			}
		}
		return nil
	}

	for _, archID := range result {
		entities := s.reader.EntitiesAt(archID)
		for slot, id := range entities {
			ok, err := s.reader.SlotChangedSince(archID, slot, s.changed, s.lastRun)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if !callback(id) {
				return nil
			}
		}
	}
	return nil
}

// Count returns the number of entities that match the search.
func (s *Search) Count() (int, error) {
	ret := 0
	err := s.Each(func(types.EntityID) bool {
		ret++
		return true
	})
	return ret, err
}

// First returns the first entity that matches the search.
func (s *Search) First() (types.EntityID, error) {
	found := BadID
	err := s.Each(func(id types.EntityID) bool {
		found = id
		return false
	})
	if err != nil {
		return BadID, err
	}
	if found == BadID {
		return BadID, ErrNoEntitiesFound
	}
	return found, nil
}

// MustFirst returns the first entity that matches the search, panicking when
// there is none.
func (s *Search) MustFirst() types.EntityID {
	id, err := s.First()
	if err != nil {
		panic("no entity matches the search")
	}
	return id
}

// Collect returns all matching entity ids.
func (s *Search) Collect() ([]types.EntityID, error) {
	var ids []types.EntityID
	err := s.Each(func(id types.EntityID) bool {
		ids = append(ids, id)
		return true
	})
	return ids, err
}

// evaluateSearch extends the archetype cache with any archetypes created
// since the last resolve.
func (s *Search) evaluateSearch() []types.ArchetypeID {
	cache := s.archMatches
	cache.archetypes = append(cache.archetypes, s.reader.SearchFrom(s.filter, cache.seen)...)
	cache.seen = s.reader.ArchetypeCount()
	return cache.archetypes
}

// ChangedComponents returns the component names of the slot-level changed
// predicate, if any.
func (s *Search) ChangedComponents() []string {
	return s.changed
}

// LastRun returns the tick changed-since predicates compare against.
func (s *Search) LastRun() types.Tick {
	return s.lastRun
}
