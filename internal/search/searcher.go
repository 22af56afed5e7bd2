// Package search wires the name index, the fuzzy matcher and the store into the
// search-as-you-type flow.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/nikbrunner/dex/internal/fuzzy"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/rs/zerolog/log"
)

// substringCap bounds the hydrate fetch when the substring filter is on.
const substringCap = 20

// EntryReader fetches full entry records.
type EntryReader interface {
	ListEntries(ctx context.Context, f storage.EntryFilter) ([]model.Entry, error)
}

// Store is what a Searcher needs from storage.
type Store interface {
	NameSource
	EntryReader
}

// Options configures a Searcher.
type Options struct {
	RequireSubstring bool
}

// Searcher answers result and suggestion queries. Matchers are rebuilt only when
// the loaded name list changes. Safe for concurrent use.
type Searcher struct {
	index   *NameIndex
	entries EntryReader
	opts    Options

	mu          sync.Mutex
	names       []string
	results     *fuzzy.Matcher
	suggestions *fuzzy.Matcher
}

// NewSearcher creates a Searcher over store. Call Refresh before the first query.
func NewSearcher(store Store, opts Options) *Searcher {
	return &Searcher{
		index:       NewNameIndex(store),
		entries:     store,
		opts:        opts,
		results:     fuzzy.New(nil, fuzzy.ResultMode),
		suggestions: fuzzy.New(nil, fuzzy.SuggestionMode),
	}
}

// Refresh reloads the name index and rebuilds the matchers if the names changed.
func (s *Searcher) Refresh(ctx context.Context) {
	names := s.index.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.results.SameNames(names) {
		return
	}
	s.names = names
	s.results = fuzzy.New(names, fuzzy.ResultMode)
	s.suggestions = fuzzy.New(names, fuzzy.SuggestionMode)
	log.Ctx(ctx).Debug().Int("names", len(names)).Msg("search index rebuilt")
}

// Names returns the currently indexed names.
func (s *Searcher) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names
}

// Suggestions returns names for the dropdown under the input, best first.
func (s *Searcher) Suggestions(query string) []string {
	s.mu.Lock()
	m := s.suggestions
	s.mu.Unlock()

	return fuzzy.Names(m.Search(query, 0))
}

// Results runs the matcher in result mode and hydrates the candidate names into full
// records, in rank order. A store failure is logged and returned alongside an empty
// result so callers can surface it.
func (s *Searcher) Results(ctx context.Context, query string) ([]model.Entry, error) {
	s.mu.Lock()
	m := s.results
	s.mu.Unlock()

	names := fuzzy.Names(m.Search(query, 0))
	if len(names) == 0 {
		return []model.Entry{}, nil
	}

	filter := storage.EntryFilter{Names: names}
	if s.opts.RequireSubstring {
		filter.NameContains = strings.ToLower(strings.TrimSpace(query))
		filter.Limit = substringCap
	}

	records, err := s.entries.ListEntries(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("query", query).Msg("failed to hydrate search results")
		return []model.Entry{}, err
	}

	return rankOrder(names, records), nil
}

// rankOrder arranges records to follow the matcher's name order. Names without a
// record (deactivated or hidden since the index was loaded) are dropped.
func rankOrder(names []string, records []model.Entry) []model.Entry {
	byName := make(map[string]model.Entry, len(records))
	for _, r := range records {
		byName[r.Name] = r
	}

	ordered := make([]model.Entry, 0, len(records))
	for _, n := range names {
		if r, ok := byName[n]; ok {
			ordered = append(ordered, r)
		}
	}
	return ordered
}
