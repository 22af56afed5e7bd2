package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
	"github.com/nikbrunner/dex/internal/tui/layout"
)

// Tab identifies one of the top-level views.
type Tab int

const (
	TabSearch Tab = iota
	TabLibrary
	TabFavorites
)

var tabNames = []string{"Search", "Library", "Favorites"}

func (t Tab) String() string {
	return tabNames[t]
}

// MessageType controls the styling of the status line.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// SearchState holds state for the catalog search tab.
type SearchState struct {
	Input textinput.Model

	// Query is the text of the most recently fired search.
	Query   string
	pending search.Ticket
	Results []model.Entry
	Loading bool
	Cursor  int

	Suggestions        []string
	SuggestCursor      int // -1 = no suggestion selected
	SuggestionsVisible bool
	blurSeq            int // invalidates pending grace timers
}

// NewSearchState creates a new SearchState with initialized input.
func NewSearchState(cfg layout.LayoutConfig) SearchState {
	input := textinput.New()
	input.Placeholder = "Search Pokemon..."
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.StandardWidth

	return SearchState{
		Input:         input,
		SuggestCursor: -1,
	}
}

// ListState holds state for the library and favorites tabs.
type ListState struct {
	FilterInput textinput.Model
	Entries     []model.Entry
	Filtered    []search.FilterResult
	Cursor      int
}

// NewListState creates a new ListState with initialized filter input.
func NewListState(cfg layout.LayoutConfig) ListState {
	input := textinput.New()
	input.Placeholder = "Filter..."
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.StandardWidth

	return ListState{
		FilterInput: input,
	}
}

// FilterQuery returns the active filter text.
func (l ListState) FilterQuery() string {
	return l.FilterInput.Value()
}

// Refilter recomputes the filtered view after the entries or the query changed.
func (l *ListState) Refilter() {
	l.Filtered = search.FilterEntries(l.Entries, l.FilterQuery())
	l.clampCursor()
}

// Items returns the rows to display: all entries, or the filter matches when filtering.
func (l ListState) Items() []Item {
	if l.FilterQuery() == "" {
		return itemsFromEntries(l.Entries)
	}
	return itemsFromMatches(l.Filtered)
}

func (l *ListState) clampCursor() {
	n := len(l.Items())
	if l.Cursor >= n {
		l.Cursor = n - 1
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
}
