package search

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type fakeStore struct {
	entries  []model.Entry
	namesErr error
	listErr  error

	nameCalls  int
	lastFilter storage.EntryFilter
}

func (f *fakeStore) SearchableNames(ctx context.Context) ([]string, error) {
	f.nameCalls++
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	var names []string
	for _, e := range f.entries {
		if e.Searchable() {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

func (f *fakeStore) ListEntries(ctx context.Context, filter storage.EntryFilter) ([]model.Entry, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Entry
	for _, e := range f.entries {
		if !e.Searchable() {
			continue
		}
		if filter.Names != nil && !slices.Contains(filter.Names, e.Name) {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(e.Name, filter.NameContains) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func entry(id int, name string) model.Entry {
	return model.NewEntry(model.NewEntryParams{ID: id, Name: name})
}

func newStore() *fakeStore {
	hidden := entry(4, "pikachu-gmax")
	hidden.Hidden = true
	inactive := entry(5, "pikablu")
	inactive.Active = false
	return &fakeStore{entries: []model.Entry{
		entry(1, "bulbasaur"),
		entry(25, "pikachu"),
		entry(26, "raichu"),
		entry(172, "pichu"),
		hidden,
		inactive,
	}}
}

func TestNameIndex_LoadFiltersHiddenAndInactive(t *testing.T) {
	idx := NewNameIndex(newStore())

	names := idx.Load(context.Background())

	assert.DeepEqual(t, names, []string{"bulbasaur", "pikachu", "raichu", "pichu"})
}

func TestNameIndex_LoadFailureYieldsEmpty(t *testing.T) {
	idx := NewNameIndex(&fakeStore{namesErr: errors.New("connection refused")})

	names := idx.Load(context.Background())

	assert.Assert(t, names != nil)
	assert.Assert(t, is.Len(names, 0))
}

func TestSearcher_ResultsInRankOrder(t *testing.T) {
	store := newStore()
	s := NewSearcher(store, Options{})
	s.Refresh(context.Background())

	got, err := s.Results(context.Background(), "pikachu")
	assert.NilError(t, err)

	assert.Assert(t, len(got) > 0)
	assert.Equal(t, got[0].Name, "pikachu")
	for _, e := range got {
		assert.Check(t, e.Name != "pikachu-gmax", "hidden entry leaked into results")
		assert.Check(t, e.Name != "pikablu", "inactive entry leaked into results")
	}
}

func TestSearcher_ResultsTypoTolerant(t *testing.T) {
	s := NewSearcher(newStore(), Options{})
	s.Refresh(context.Background())

	got, err := s.Results(context.Background(), "pikachy")
	assert.NilError(t, err)
	assert.Assert(t, len(got) > 0)
	assert.Equal(t, got[0].Name, "pikachu")
}

func TestSearcher_EmptyQuery(t *testing.T) {
	store := newStore()
	s := NewSearcher(store, Options{})
	s.Refresh(context.Background())

	got, err := s.Results(context.Background(), "   ")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(got, 0))
	assert.Assert(t, is.Len(s.Suggestions(""), 0))
}

func TestSearcher_RequireSubstring(t *testing.T) {
	store := newStore()
	s := NewSearcher(store, Options{RequireSubstring: true})
	s.Refresh(context.Background())

	got, err := s.Results(context.Background(), "Pikachy")
	assert.NilError(t, err)

	// "pikachy" is a typo, so no name contains it verbatim
	assert.Assert(t, is.Len(got, 0))
	assert.Equal(t, store.lastFilter.NameContains, "pikachy")
	assert.Equal(t, store.lastFilter.Limit, substringCap)
}

func TestSearcher_HydrateFailure(t *testing.T) {
	store := newStore()
	s := NewSearcher(store, Options{})
	s.Refresh(context.Background())
	store.listErr = errors.New("timeout")

	got, err := s.Results(context.Background(), "pikachu")
	assert.ErrorContains(t, err, "timeout")
	assert.Assert(t, got != nil)
	assert.Assert(t, is.Len(got, 0))
}

func TestSearcher_Suggestions(t *testing.T) {
	s := NewSearcher(newStore(), Options{})
	s.Refresh(context.Background())

	got := s.Suggestions("pichu")
	assert.Assert(t, len(got) > 0)
	assert.Equal(t, got[0], "pichu")
	assert.Check(t, len(got) <= 8)
	assert.Check(t, !slices.Contains(got, "pikachu-gmax"))
}

func TestSearcher_RefreshPicksUpChanges(t *testing.T) {
	store := newStore()
	s := NewSearcher(store, Options{})
	s.Refresh(context.Background())
	before := s.results

	// Unchanged names keep the matcher
	s.Refresh(context.Background())
	assert.Assert(t, before == s.results)

	store.entries = append(store.entries, entry(133, "eevee"))
	s.Refresh(context.Background())
	assert.Assert(t, before != s.results)

	got, err := s.Results(context.Background(), "eevee")
	assert.NilError(t, err)
	assert.Assert(t, is.Len(got, 1))
	assert.Equal(t, got[0].ID, 133)
}

func TestRankOrder_DropsMissingRecords(t *testing.T) {
	records := []model.Entry{entry(1, "a"), entry(2, "b"), entry(3, "c")}

	got := rankOrder([]string{"c", "gone", "a"}, records)

	assert.Assert(t, is.Len(got, 2))
	assert.Equal(t, got[0].Name, "c")
	assert.Equal(t, got[1].Name, "a")
}

func TestDebouncer_OnlyLastTicketLive(t *testing.T) {
	d := NewDebouncer(DefaultDebounce)

	first := d.Schedule()
	second := d.Schedule()

	assert.Check(t, !d.Live(first))
	assert.Check(t, d.Live(second))

	d.Cancel()
	assert.Check(t, !d.Live(second))
}

// TestDebouncer_BurstFiresOnce replays ten keystrokes 100ms apart against a 300ms
// quiet period on a simulated clock.
func TestDebouncer_BurstFiresOnce(t *testing.T) {
	d := NewDebouncer(300 * time.Millisecond)

	type timer struct {
		at     time.Duration
		ticket Ticket
		query  string
	}

	var timers []timer
	query := ""
	for i := 0; i < 10; i++ {
		now := time.Duration(i) * 100 * time.Millisecond
		query += string(rune('a' + i))

		// Timers due before this keystroke fire first
		for len(timers) > 0 && timers[0].at <= now {
			if d.Live(timers[0].ticket) {
				t.Fatalf("timer for %q fired during the burst", timers[0].query)
			}
			timers = timers[1:]
		}

		timers = append(timers, timer{at: now + d.Delay(), ticket: d.Schedule(), query: query})
	}

	var fired []string
	for _, tm := range timers {
		if d.Live(tm.ticket) {
			fired = append(fired, tm.query)
		}
	}

	assert.DeepEqual(t, fired, []string{"abcdefghij"})
}

func TestRequestTracker_DropsStaleResponses(t *testing.T) {
	var r RequestTracker

	slow := r.Next()
	fast := r.Next()

	// fast resolves first, then slow
	assert.Check(t, r.IsLatest(fast))
	assert.Check(t, !r.IsLatest(slow))
}

func TestFilterEntries(t *testing.T) {
	entries := []model.Entry{entry(1, "bulbasaur"), entry(25, "pikachu"), entry(26, "raichu")}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty query", "", nil},
		{"subsequence", "pkc", []string{"pikachu"}},
		{"shared suffix", "chu", []string{"raichu", "pikachu"}},
		{"no match", "xyz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := FilterEntries(entries, tt.query)

			var got []string
			for _, r := range results {
				got = append(got, r.Entry.Name)
			}
			if tt.want == nil {
				assert.Check(t, is.Len(got, 0))
				return
			}
			assert.Check(t, is.Len(got, len(tt.want)))
			for _, w := range tt.want {
				assert.Check(t, slices.Contains(got, w), "missing %s", w)
			}
		})
	}
}
