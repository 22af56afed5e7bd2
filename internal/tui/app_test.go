package tui

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/dex/internal/admin"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
	"github.com/nikbrunner/dex/internal/session"
	"github.com/nikbrunner/dex/internal/storage"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type testEnv struct {
	store    *storage.SQLiteStorage
	session  *session.Session
	searcher *search.Searcher
	entries  map[string]model.Entry
	copied   []string
	copyErr  error
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "dex.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { s.Close() })

	env := &testEnv{store: s, entries: map[string]model.Entry{}}
	for _, p := range []model.NewEntryParams{
		{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69},
		{ID: 2, Name: "ivysaur", Height: 10, Weight: 130},
		{ID: 4, Name: "charmander", Height: 6, Weight: 85},
		{ID: 25, Name: "pikachu", Height: 4, Weight: 60},
		{ID: 26, Name: "raichu", Height: 8, Weight: 300},
	} {
		e := model.NewEntry(p)
		assert.NilError(t, s.InsertEntry(ctx, e))
		env.entries[e.Name] = e
	}

	env.session, err = session.NewManager(s).SignIn(ctx, "ash")
	assert.NilError(t, err)

	env.searcher = search.NewSearcher(s, search.Options{})
	env.searcher.Refresh(ctx)
	return env
}

func (env *testEnv) app(moderator Moderator) App {
	return NewApp(AppParams{
		Session:   env.session,
		Searcher:  env.searcher,
		Moderator: moderator,
		Clipboard: func(s string) error {
			if env.copyErr != nil {
				return env.copyErr
			}
			env.copied = append(env.copied, s)
			return nil
		},
	}).WithDimensions(100, 30)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(app App, keys ...string) App {
	for _, k := range keys {
		updated, _ := app.Update(keyMsg(k))
		app = updated.(App)
	}
	return app
}

func typeText(app App, text string) App {
	for _, r := range text {
		app = press(app, string(r))
	}
	return app
}

func send(app App, msg tea.Msg) (App, tea.Cmd) {
	updated, cmd := app.Update(msg)
	return updated.(App), cmd
}

// withResults puts entries into the search tab as if a search had completed.
func withResults(app App, entries ...model.Entry) App {
	app.search.Results = entries
	return app
}

func itemNames(items []Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Entry.Name
	}
	return names
}

func TestApp_SlashFocusesSearch(t *testing.T) {
	env := newTestEnv(t)
	app := env.app(nil)
	assert.Check(t, !app.InputFocused())

	app = press(app, "/")
	assert.Check(t, app.InputFocused())

	app = typeText(app, "jk")
	assert.Equal(t, app.search.Input.Value(), "jk", "letters go to the input while focused")
	assert.Equal(t, app.Cursor(), 0)
}

func TestApp_DebouncedSearchFiresOnlyLatest(t *testing.T) {
	env := newTestEnv(t)
	app := typeText(press(env.app(nil), "/"), "pika")
	latest := app.search.pending

	// An older timer firing is ignored
	app, cmd := send(app, debounceMsg{ticket: latest - 1, query: "pik"})
	assert.Assert(t, cmd == nil)
	assert.Check(t, !app.search.Loading)

	app, cmd = send(app, debounceMsg{ticket: latest, query: "pika"})
	assert.Assert(t, cmd != nil)
	assert.Check(t, app.search.Loading)

	app, _ = send(app, cmd())
	assert.Check(t, !app.search.Loading)
	names := itemNames(app.Items())
	assert.Assert(t, len(names) > 0)
	assert.Equal(t, names[0], "pikachu")
}

func TestApp_StaleResponseDropped(t *testing.T) {
	env := newTestEnv(t)
	app := env.app(nil)

	slow := app.fireSearch("charmander")
	fast := app.fireSearch("pikachu")

	// The newer request answers first, then the older one arrives late
	app, _ = send(app, fast())
	app, _ = send(app, slow())

	names := itemNames(app.Items())
	assert.Assert(t, len(names) > 0)
	assert.Equal(t, names[0], "pikachu")
	assert.Equal(t, app.search.Query, "pikachu")
}

func TestApp_HydrateFailureShowsStatus(t *testing.T) {
	env := newTestEnv(t)
	app := withResults(env.app(nil), env.entries["pikachu"])

	gen := app.tracker.Next()
	app, _ = send(app, resultsMsg{gen: gen, query: "pika", err: errors.New("database is locked")})

	assert.Check(t, is.Len(app.Items(), 0))
	text, kind := app.Message()
	assert.Equal(t, kind, MessageError)
	assert.Check(t, is.Contains(text, "database is locked"))
}

func TestApp_SuggestionsWhileFocused(t *testing.T) {
	env := newTestEnv(t)
	app := typeText(press(env.app(nil), "/"), "bulb")

	suggestions, visible := app.Suggestions()
	assert.Check(t, visible)
	assert.Check(t, is.Contains(suggestions, "bulbasaur"))

	// Choosing a suggestion fills the input and searches right away
	app = press(app, "ctrl+n")
	assert.Equal(t, app.search.SuggestCursor, 0)
	app, cmd := send(app, keyMsg("enter"))
	assert.Assert(t, cmd != nil)
	assert.Equal(t, app.search.Input.Value(), suggestions[0])
	assert.Check(t, !app.InputFocused())
}

func TestApp_SuggestionsHiddenAfterGrace(t *testing.T) {
	env := newTestEnv(t)
	app := typeText(press(env.app(nil), "/"), "bulb")

	app = press(app, "esc")
	assert.Check(t, !app.InputFocused())
	_, visible := app.Suggestions()
	assert.Check(t, visible, "suggestions stay during the grace period")

	app, _ = send(app, blurGraceMsg{seq: app.search.blurSeq})
	_, visible = app.Suggestions()
	assert.Check(t, !visible)
}

func TestApp_RefocusCancelsGrace(t *testing.T) {
	env := newTestEnv(t)
	app := typeText(press(env.app(nil), "/"), "bulb")

	app = press(app, "esc")
	staleSeq := app.search.blurSeq
	app = press(app, "/")

	app, _ = send(app, blurGraceMsg{seq: staleSeq})
	_, visible := app.Suggestions()
	assert.Check(t, visible)
	assert.Check(t, app.InputFocused())
}

func TestApp_Navigation(t *testing.T) {
	env := newTestEnv(t)
	app := withResults(env.app(nil),
		env.entries["bulbasaur"], env.entries["ivysaur"], env.entries["charmander"])

	app = press(app, "j", "j", "j")
	assert.Equal(t, app.Cursor(), 2, "j stops at the last item")

	app = press(app, "k")
	assert.Equal(t, app.Cursor(), 1)

	app = press(app, "g", "g")
	assert.Equal(t, app.Cursor(), 0)

	app = press(app, "G")
	assert.Equal(t, app.Cursor(), 2)
}

func TestApp_TabSwitching(t *testing.T) {
	env := newTestEnv(t)
	app := env.app(nil)

	app = press(app, "tab")
	assert.Equal(t, app.Tab(), TabLibrary)
	app = press(app, "tab")
	assert.Equal(t, app.Tab(), TabFavorites)
	app = press(app, "tab")
	assert.Equal(t, app.Tab(), TabSearch)

	app = press(app, "3")
	assert.Equal(t, app.Tab(), TabFavorites)
	app = press(app, "1")
	assert.Equal(t, app.Tab(), TabSearch)
}

func TestApp_ToggleMembership(t *testing.T) {
	env := newTestEnv(t)
	app := withResults(env.app(nil), env.entries["pikachu"])
	lib := env.session.Library

	app = press(app, "l")
	assert.Check(t, lib.IsInLibrary(25))
	text, _ := app.Message()
	assert.Equal(t, text, "Added Pikachu to library")

	app = press(app, "f")
	assert.Check(t, lib.IsInFavorites(25))

	app = press(app, "3")
	assert.DeepEqual(t, itemNames(app.Items()), []string{"pikachu"})

	// Unfavoriting on the favorites tab removes the row but keeps the library entry
	app = press(app, "f")
	assert.Check(t, is.Len(app.Items(), 0))
	assert.Check(t, lib.IsInLibrary(25))

	app = press(app, "2")
	assert.DeepEqual(t, itemNames(app.Items()), []string{"pikachu"})

	app = press(app, "l")
	assert.Check(t, is.Len(app.Items(), 0))
	assert.Check(t, !lib.IsInLibrary(25))
}

func TestApp_LibraryFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"bulbasaur", "ivysaur", "pikachu"} {
		assert.NilError(t, env.session.Library.AddToLibrary(ctx, env.entries[name]))
	}

	app := press(env.app(nil), "2")
	assert.Check(t, is.Len(app.Items(), 3))

	app = typeText(press(app, "/"), "saur")
	items := app.Items()
	assert.Check(t, is.Len(items, 2))
	for _, it := range items {
		assert.Check(t, strings.HasSuffix(it.Entry.Name, "saur"))
		assert.Check(t, len(it.MatchedIndexes) == 4)
	}

	// Closing the input keeps the filter; a second esc clears it
	app = press(app, "esc")
	assert.Check(t, !app.InputFocused())
	assert.Check(t, is.Len(app.Items(), 2))

	app = press(app, "esc")
	assert.Check(t, is.Len(app.Items(), 3))
}

func TestApp_YankURL(t *testing.T) {
	env := newTestEnv(t)
	app := withResults(env.app(nil), env.entries["pikachu"])

	app = press(app, "Y")
	assert.DeepEqual(t, env.copied, []string{"https://pokeapi.co/api/v2/pokemon/25/"})

	env.copyErr = errors.New("no clipboard utility")
	app = press(app, "Y")
	text, kind := app.Message()
	assert.Equal(t, kind, MessageError)
	assert.Check(t, is.Contains(text, "no clipboard utility"))
}

func TestApp_HideRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	trainer := admin.NewService(env.session.Profile, env.store, nil, nil)
	app := withResults(env.app(trainer), env.entries["raichu"])

	app = press(app, "H")
	text, kind := app.Message()
	assert.Equal(t, kind, MessageError)
	assert.Check(t, is.Contains(text, "admin role required"))
	assert.Check(t, is.Contains(env.searcher.Names(), "raichu"))
	assert.Check(t, is.Len(app.Items(), 1))
}

func TestApp_HideAsAdmin(t *testing.T) {
	env := newTestEnv(t)
	oak := admin.NewService(model.Profile{ID: "oak", Role: model.RoleAdmin}, env.store, nil, nil)
	app := withResults(env.app(oak), env.entries["raichu"], env.entries["pikachu"])

	app = press(app, "H")
	assert.DeepEqual(t, itemNames(app.Items()), []string{"pikachu"})
	assert.Check(t, !slices.Contains(env.searcher.Names(), "raichu"))
}

func TestApp_DetailToggle(t *testing.T) {
	env := newTestEnv(t)
	app := env.app(nil)

	// Nothing selected, nothing to show
	app = press(app, "enter")
	assert.Check(t, !app.DetailVisible())

	app = withResults(app, env.entries["pikachu"])
	app = press(app, "enter")
	assert.Check(t, app.DetailVisible())

	app = press(app, "esc")
	assert.Check(t, !app.DetailVisible())
}

func TestApp_ClearMessageOnlyForLatest(t *testing.T) {
	env := newTestEnv(t)
	app := withResults(env.app(nil), env.entries["pikachu"])

	app = press(app, "l")
	first := app.messageSeq
	app = press(app, "f")

	app, _ = send(app, clearMessageMsg{seq: first})
	text, _ := app.Message()
	assert.Equal(t, text, "Added Pikachu to favorites")

	app, _ = send(app, clearMessageMsg{seq: app.messageSeq})
	text, _ = app.Message()
	assert.Equal(t, text, "")
}
