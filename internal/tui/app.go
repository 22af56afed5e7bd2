package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/dex/internal/admin"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
	"github.com/nikbrunner/dex/internal/session"
	"github.com/nikbrunner/dex/internal/tui/layout"
	"github.com/rs/zerolog/log"
)

// DefaultSuggestionGrace is how long suggestions stay on screen after the input loses focus.
const DefaultSuggestionGrace = 200 * time.Millisecond

const messageTimeout = 3 * time.Second

// Moderator hides entries from search. Implemented by admin.Service.
type Moderator interface {
	SetHidden(ctx context.Context, id int, hidden bool) error
}

// App is the main bubbletea model for browsing the catalog.
type App struct {
	ctx          context.Context
	session      *session.Session
	searcher     *search.Searcher
	moderator    Moderator
	debouncer    *search.Debouncer
	tracker      *search.RequestTracker
	grace        time.Duration
	copy         func(string) error
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	tab        Tab
	search     SearchState
	library    ListState
	favorites  ListState
	showDetail bool

	// For gg command
	lastKeyWasG bool

	messageText string
	messageType MessageType
	messageSeq  int

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context  context.Context // optional, defaults to context.Background
	Session  *session.Session
	Searcher *search.Searcher

	Moderator       Moderator     // optional, enables hiding entries
	Debounce        time.Duration // optional, defaults to search.DefaultDebounce
	SuggestionGrace time.Duration // optional, defaults to DefaultSuggestionGrace

	Clipboard    func(string) error   // optional, defaults to the system clipboard
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	debounce := params.Debounce
	if debounce <= 0 {
		debounce = search.DefaultDebounce
	}

	grace := params.SuggestionGrace
	if grace <= 0 {
		grace = DefaultSuggestionGrace
	}

	copyFn := params.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	return App{
		ctx:          ctx,
		session:      params.Session,
		searcher:     params.Searcher,
		moderator:    params.Moderator,
		debouncer:    search.NewDebouncer(debounce),
		tracker:      &search.RequestTracker{},
		grace:        grace,
		copy:         copyFn,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		tab:          TabSearch,
		search:       NewSearchState(layoutConfig),
		library:      NewListState(layoutConfig),
		favorites:    NewListState(layoutConfig),
		width:        80,
		height:       24,
	}
}

// WithDimensions returns a copy of the App with the given terminal size.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// Tab returns the active tab.
func (a App) Tab() Tab {
	return a.tab
}

// Cursor returns the cursor position in the active tab.
func (a App) Cursor() int {
	if a.tab == TabSearch {
		return a.search.Cursor
	}
	return a.list(a.tab).Cursor
}

// Items returns the rows of the active tab.
func (a App) Items() []Item {
	if a.tab == TabSearch {
		return itemsFromEntries(a.search.Results)
	}
	return a.list(a.tab).Items()
}

// Suggestions returns the suggestion list and whether it is currently shown.
func (a App) Suggestions() ([]string, bool) {
	return a.search.Suggestions, a.search.SuggestionsVisible && len(a.search.Suggestions) > 0
}

// InputFocused reports whether keystrokes go to a text input.
func (a App) InputFocused() bool {
	if a.tab == TabSearch {
		return a.search.Input.Focused()
	}
	return a.list(a.tab).FilterInput.Focused()
}

// Message returns the status line text and type.
func (a App) Message() (string, MessageType) {
	return a.messageText, a.messageType
}

// DetailVisible reports whether the full detail view is open.
func (a App) DetailVisible() bool {
	return a.showDetail
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case debounceMsg:
		if !a.debouncer.Live(msg.ticket) {
			return a, nil
		}
		return a, a.fireSearch(msg.query)

	case resultsMsg:
		return a.handleResults(msg)

	case blurGraceMsg:
		if msg.seq == a.search.blurSeq && !a.search.Input.Focused() {
			a.search.SuggestionsVisible = false
		}
		return a, nil

	case clearMessageMsg:
		if msg.seq == a.messageSeq {
			a.messageText = ""
		}
		return a, nil

	case tea.KeyMsg:
		if a.InputFocused() {
			if a.tab == TabSearch {
				return a.handleSearchInputKey(msg)
			}
			return a.handleFilterInputKey(msg)
		}
		return a.handleNormalKey(msg)
	}

	return a, nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}

func (a App) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.setCursor(0)
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}

	// Reset g flag for any other key
	a.lastKeyWasG = false

	items := a.Items()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Blur):
		if a.showDetail {
			a.showDetail = false
		} else if a.tab != TabSearch && a.list(a.tab).FilterQuery() != "" {
			l := a.list(a.tab)
			l.FilterInput.Reset()
			l.Refilter()
		}

	case key.Matches(msg, a.keys.Down):
		if c := a.Cursor(); len(items) > 0 && c < len(items)-1 {
			a.setCursor(c + 1)
		}

	case key.Matches(msg, a.keys.Up):
		if c := a.Cursor(); c > 0 {
			a.setCursor(c - 1)
		}

	case key.Matches(msg, a.keys.Bottom):
		if len(items) > 0 {
			a.setCursor(len(items) - 1)
		}

	case key.Matches(msg, a.keys.Focus):
		a.showDetail = false
		return a, a.focusInput()

	case key.Matches(msg, a.keys.NextTab):
		return a, a.switchTab((a.tab + 1) % Tab(len(tabNames)))

	case key.Matches(msg, a.keys.PrevTab):
		return a, a.switchTab((a.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))

	case key.Matches(msg, a.keys.SearchTab):
		return a, a.switchTab(TabSearch)

	case key.Matches(msg, a.keys.LibraryTab):
		return a, a.switchTab(TabLibrary)

	case key.Matches(msg, a.keys.FavoritesTab):
		return a, a.switchTab(TabFavorites)

	case key.Matches(msg, a.keys.Detail):
		if _, ok := a.selected(); ok {
			a.showDetail = !a.showDetail
		}

	case key.Matches(msg, a.keys.ToggleLibrary):
		return a, a.toggleLibrary()

	case key.Matches(msg, a.keys.ToggleFavorite):
		return a, a.toggleFavorite()

	case key.Matches(msg, a.keys.YankURL):
		return a, a.yankURL()

	case key.Matches(msg, a.keys.Hide):
		return a, a.hideSelected()

	case key.Matches(msg, a.keys.Reload):
		return a, a.reload()
	}

	return a, nil
}

func (a App) handleSearchInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return a, tea.Quit

	case key.Matches(msg, a.keys.Blur):
		return a, a.blurSearch()

	case key.Matches(msg, a.keys.Submit):
		if c := a.search.SuggestCursor; c >= 0 && c < len(a.search.Suggestions) {
			a.search.Input.SetValue(a.search.Suggestions[c])
			a.search.Input.CursorEnd()
		}
		// Searching now supersedes the pending debounce
		a.debouncer.Cancel()
		blur := a.blurSearch()
		return a, tea.Batch(blur, a.fireSearch(a.search.Input.Value()))

	case key.Matches(msg, a.keys.SuggestNext):
		if a.search.SuggestCursor < len(a.search.Suggestions)-1 {
			a.search.SuggestCursor++
		}
		return a, nil

	case key.Matches(msg, a.keys.SuggestPrev):
		if a.search.SuggestCursor > -1 {
			a.search.SuggestCursor--
		}
		return a, nil
	}

	before := a.search.Input.Value()
	var inputCmd tea.Cmd
	a.search.Input, inputCmd = a.search.Input.Update(msg)

	value := a.search.Input.Value()
	if value == before {
		return a, inputCmd
	}

	return a, tea.Batch(inputCmd, a.queryChanged(value))
}

func (a App) handleFilterInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := a.list(a.tab)

	switch {
	case msg.Type == tea.KeyCtrlC:
		return a, tea.Quit

	case key.Matches(msg, a.keys.Blur), key.Matches(msg, a.keys.Submit):
		// The filter stays applied after the input closes
		l.FilterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	l.FilterInput, cmd = l.FilterInput.Update(msg)
	l.Refilter()
	return a, cmd
}

// queryChanged refreshes suggestions synchronously and reschedules the debounced search.
func (a *App) queryChanged(query string) tea.Cmd {
	a.search.Suggestions = a.searcher.Suggestions(query)
	a.search.SuggestCursor = -1

	ticket := a.debouncer.Schedule()
	a.search.pending = ticket
	return tea.Tick(a.debouncer.Delay(), func(time.Time) tea.Msg {
		return debounceMsg{ticket: ticket, query: query}
	})
}

// fireSearch issues a new generation and hydrates results off the update loop.
func (a *App) fireSearch(query string) tea.Cmd {
	gen := a.tracker.Next()
	a.search.Query = query
	a.search.Loading = true

	ctx := a.ctx
	searcher := a.searcher
	return func() tea.Msg {
		entries, err := searcher.Results(ctx, query)
		return resultsMsg{gen: gen, query: query, entries: entries, err: err}
	}
}

func (a App) handleResults(msg resultsMsg) (tea.Model, tea.Cmd) {
	if !a.tracker.IsLatest(msg.gen) {
		log.Ctx(a.ctx).Debug().Str("query", msg.query).Msg("dropping stale search response")
		return a, nil
	}

	a.search.Loading = false
	a.search.Cursor = 0
	a.search.Results = msg.entries
	if a.search.Results == nil {
		a.search.Results = []model.Entry{}
	}

	if msg.err != nil {
		return a, a.setMessage(MessageError, "Search failed: "+msg.err.Error())
	}
	return a, nil
}

func (a *App) focusInput() tea.Cmd {
	if a.tab != TabSearch {
		return a.list(a.tab).FilterInput.Focus()
	}

	// Cancel any pending blur grace
	a.search.blurSeq++
	a.search.SuggestionsVisible = true
	a.search.Suggestions = a.searcher.Suggestions(a.search.Input.Value())
	a.search.SuggestCursor = -1
	return a.search.Input.Focus()
}

// blurSearch leaves suggestions on screen for the grace period.
func (a *App) blurSearch() tea.Cmd {
	a.search.Input.Blur()
	a.search.blurSeq++
	seq := a.search.blurSeq
	return tea.Tick(a.grace, func(time.Time) tea.Msg {
		return blurGraceMsg{seq: seq}
	})
}

func (a *App) switchTab(t Tab) tea.Cmd {
	if t == a.tab {
		return nil
	}
	var cmd tea.Cmd
	if a.tab == TabSearch && a.search.Input.Focused() {
		cmd = a.blurSearch()
	} else if a.tab != TabSearch {
		a.list(a.tab).FilterInput.Blur()
	}
	a.tab = t
	a.showDetail = false
	if t != TabSearch {
		if err := a.loadList(t); err != nil {
			return tea.Batch(cmd, a.setMessage(MessageError, "Failed to load "+t.String()+": "+err.Error()))
		}
	}
	return cmd
}

// loadList reads the tab's entries from the membership cache.
func (a *App) loadList(t Tab) error {
	l := a.list(t)

	var entries []model.Entry
	var err error
	if t == TabFavorites {
		entries, err = a.session.Library.Favorites(a.ctx)
	} else {
		entries, err = a.session.Library.Entries(a.ctx)
	}
	if err != nil {
		l.Entries = nil
		l.Refilter()
		return err
	}

	l.Entries = entries
	l.Refilter()
	return nil
}

// list returns the state of a library or favorites tab.
func (a *App) list(t Tab) *ListState {
	if t == TabFavorites {
		return &a.favorites
	}
	return &a.library
}

func (a *App) setCursor(c int) {
	if a.tab == TabSearch {
		a.search.Cursor = c
		return
	}
	a.list(a.tab).Cursor = c
}

func (a App) selected() (model.Entry, bool) {
	items := a.Items()
	c := a.Cursor()
	if c < 0 || c >= len(items) {
		return model.Entry{}, false
	}
	return items[c].Entry, true
}

func (a *App) toggleLibrary() tea.Cmd {
	entry, ok := a.selected()
	if !ok {
		return nil
	}

	added, err := a.session.Library.ToggleLibrary(a.ctx, entry)
	if err != nil {
		return a.setMessage(MessageError, "Library update failed: "+err.Error())
	}

	if err := a.refreshList(); err != nil {
		return a.setMessage(MessageError, "Failed to reload "+a.tab.String()+": "+err.Error())
	}
	if added {
		return a.setMessage(MessageSuccess, fmt.Sprintf("Added %s to library", entry.DisplayName()))
	}
	return a.setMessage(MessageSuccess, fmt.Sprintf("Removed %s from library", entry.DisplayName()))
}

func (a *App) toggleFavorite() tea.Cmd {
	entry, ok := a.selected()
	if !ok {
		return nil
	}

	added, err := a.session.Library.ToggleFavorite(a.ctx, entry)
	if err != nil {
		return a.setMessage(MessageError, "Favorite update failed: "+err.Error())
	}

	if err := a.refreshList(); err != nil {
		return a.setMessage(MessageError, "Failed to reload "+a.tab.String()+": "+err.Error())
	}
	if added {
		return a.setMessage(MessageSuccess, fmt.Sprintf("Added %s to favorites", entry.DisplayName()))
	}
	return a.setMessage(MessageSuccess, fmt.Sprintf("Removed %s from favorites", entry.DisplayName()))
}

// refreshList reloads the active list tab after a membership change.
func (a *App) refreshList() error {
	if a.tab == TabSearch {
		return nil
	}
	return a.loadList(a.tab)
}

func (a *App) yankURL() tea.Cmd {
	entry, ok := a.selected()
	if !ok {
		return nil
	}

	url := entry.APIURL()
	if err := a.copy(url); err != nil {
		log.Ctx(a.ctx).Error().Err(err).Msg("failed to copy to clipboard")
		return a.setMessage(MessageError, "Clipboard unavailable: "+err.Error())
	}
	return a.setMessage(MessageInfo, "Copied "+url)
}

func (a *App) hideSelected() tea.Cmd {
	entry, ok := a.selected()
	if !ok {
		return nil
	}
	if a.moderator == nil {
		return a.setMessage(MessageWarning, "Hiding entries is not available")
	}

	if err := a.moderator.SetHidden(a.ctx, entry.ID, true); err != nil {
		if errors.Is(err, admin.ErrNotAuthorized) {
			return a.setMessage(MessageError, "Not authorized: "+admin.ErrNotAuthorized.Error())
		}
		return a.setMessage(MessageError, "Hide failed: "+err.Error())
	}

	a.searcher.Refresh(a.ctx)
	a.search.Results = dropEntry(a.search.Results, entry.ID)
	if a.search.Cursor >= len(a.search.Results) && a.search.Cursor > 0 {
		a.search.Cursor = len(a.search.Results) - 1
	}
	return a.setMessage(MessageSuccess, fmt.Sprintf("%s hidden from search", entry.DisplayName()))
}

func (a *App) reload() tea.Cmd {
	if err := a.session.Library.Load(a.ctx); err != nil {
		return a.setMessage(MessageError, "Reload failed: "+err.Error())
	}
	a.searcher.Refresh(a.ctx)
	if err := a.refreshList(); err != nil {
		return a.setMessage(MessageError, "Reload failed: "+err.Error())
	}
	return a.setMessage(MessageInfo, "Reloaded")
}

// setMessage shows text on the status line and schedules its removal.
func (a *App) setMessage(t MessageType, text string) tea.Cmd {
	a.messageType = t
	a.messageText = text
	a.messageSeq++
	seq := a.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

func dropEntry(entries []model.Entry, id int) []model.Entry {
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
