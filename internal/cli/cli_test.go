package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/nikbrunner/dex/internal/admin"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const pikachuDetails = `{"types":[{"slot":1,"type":{"name":"electric"}}],"stats":[{"base_stat":35,"stat":{"name":"hp"}},{"base_stat":90,"stat":{"name":"speed"}}]}`

// newTestHome isolates HOME and environment overrides, and seeds a small catalog
// plus an admin profile "oak".
func newTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{"DEX_DB_PATH", "DEX_USER", "DEX_LOG_LEVEL", "DEX_SERVER_ADDR", "SENDGRID_API_KEY", "FROM_EMAIL", "SITE_URL"} {
		t.Setenv(env, "")
	}
	t.Setenv("DEX_LOG_LEVEL", "error")

	dbPath, err := storage.DefaultSQLitePath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0755))

	ctx := context.Background()
	s, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer s.Close()

	for _, p := range []model.NewEntryParams{
		{ID: 1, Name: "bulbasaur", Height: 7, Weight: 69},
		{ID: 2, Name: "ivysaur", Height: 10, Weight: 130},
		{ID: 4, Name: "charmander", Height: 6, Weight: 85},
		{ID: 25, Name: "pikachu", Height: 4, Weight: 60, Details: json.RawMessage(pikachuDetails)},
		{ID: 26, Name: "raichu", Height: 8, Weight: 300},
	} {
		require.NoError(t, s.InsertEntry(ctx, model.NewEntry(p)))
	}

	oak := model.NewProfile("oak")
	oak.Role = model.RoleAdmin
	require.NoError(t, s.InsertProfile(ctx, oak))

	return home
}

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, args ...string) result {
	t.Helper()
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(bytes.NewReader(nil))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	r := run(t, "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "dex version dev")

	r = run(t, "version", "--json")
	require.NoError(t, r.err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &v))
	assert.Equal(t, storage.ConfigFormatVersion, v["configFormat"])
}

func TestSetup_CreatesConfigAndProfile(t *testing.T) {
	home := newTestHome(t)

	r := run(t, "--user", "ash", "profile", "show", "--json")
	require.NoError(t, r.err)

	_, err := os.Stat(filepath.Join(home, ".config", "dex", "config.toml"))
	assert.NoError(t, err)

	var p model.Profile
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &p))
	assert.Equal(t, "ash", p.ID)
	assert.Equal(t, model.RoleUser, p.Role)
}

func TestSearch_JSON(t *testing.T) {
	newTestHome(t)

	r := run(t, "search", "pikachu", "--json")
	require.NoError(t, r.err)

	var views []entryView
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &views))
	require.NotEmpty(t, views)
	assert.Equal(t, "pikachu", views[0].Name)
	assert.Equal(t, []string{"electric"}, views[0].Types)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon/25/", views[0].APIURL)
	assert.False(t, views[0].InLibrary)
}

func TestSearch_NoResults(t *testing.T) {
	newTestHome(t)

	r := run(t, "search", "zzzzzzzzzzzz")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No Pokemon found for 'zzzzzzzzzzzz'")
}

func TestSuggest(t *testing.T) {
	newTestHome(t)

	r := run(t, "suggest", "bulb", "--json")
	require.NoError(t, r.err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &names))
	assert.Contains(t, names, "bulbasaur")
}

func TestShow(t *testing.T) {
	newTestHome(t)

	r := run(t, "show", "Pikachu")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Pikachu #25")
	assert.Contains(t, r.stdout, "electric")
	assert.Contains(t, r.stdout, "0.4 m")
	assert.Contains(t, r.stdout, "6.0 kg")
	assert.Contains(t, r.stdout, "speed")

	r = run(t, "show", "#4")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Charmander #4")

	r = run(t, "show", "mewtwo")
	assert.EqualError(t, r.err, `no entry "mewtwo"`)
}

func TestLibraryAndFavorites(t *testing.T) {
	newTestHome(t)

	r := run(t, "-u", "ash", "library", "add", "pikachu", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Added Pikachu to library")
	assert.Contains(t, r.stdout, "Added Bulbasaur to library")

	r = run(t, "-u", "ash", "fav", "add", "raichu")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Added Raichu to favorites")

	// Favorites are always in the library too
	r = run(t, "-u", "ash", "library", "list", "--json")
	require.NoError(t, r.err)
	var views []entryView
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &views))
	require.Len(t, views, 3)
	assert.Equal(t, []int{1, 25, 26}, []int{views[0].ID, views[1].ID, views[2].ID})
	assert.True(t, views[2].Favorite)

	r = run(t, "-u", "ash", "library", "list", "--filter", "saur")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Bulbasaur")
	assert.NotContains(t, r.stdout, "Pikachu")

	// Removing from the library drops favorite status
	r = run(t, "-u", "ash", "library", "remove", "raichu")
	require.NoError(t, r.err)
	r = run(t, "-u", "ash", "fav", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No favorites yet")

	// Another user has their own library
	r = run(t, "-u", "gary", "library", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Library is empty")
}

func TestLibraryExport(t *testing.T) {
	home := newTestHome(t)

	require.NoError(t, run(t, "-u", "ash", "fav", "add", "pikachu").err)

	out := filepath.Join(home, "export.yaml")
	r := run(t, "-u", "ash", "library", "export", out)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Exported 1 entries")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		User    string `yaml:"user"`
		Entries []struct {
			Name     string `yaml:"name"`
			Favorite bool   `yaml:"favorite"`
		} `yaml:"entries"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "ash", doc.User)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "pikachu", doc.Entries[0].Name)
	assert.True(t, doc.Entries[0].Favorite)

	r = run(t, "-u", "ash", "library", "export", out, "--format", "xml")
	assert.ErrorContains(t, r.err, "unsupported format")
}

func TestProfileSet(t *testing.T) {
	newTestHome(t)

	r := run(t, "-u", "ash", "profile", "set", "--full-name", "  Ash   Ketchum ", "--email", "ash@example.com", "--email-notifications")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Profile updated")

	r = run(t, "-u", "ash", "profile", "show", "--json")
	require.NoError(t, r.err)
	var p model.Profile
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &p))
	assert.Equal(t, "Ash Ketchum", p.FullName)
	assert.Equal(t, "ash@example.com", p.Email)
	assert.True(t, p.EmailNotifications)
	assert.True(t, p.IsPublic)

	r = run(t, "-u", "ash", "profile", "set", "--email", "not-an-email")
	assert.ErrorContains(t, r.err, "invalid email")

	r = run(t, "-u", "ash", "profile", "set")
	assert.ErrorContains(t, r.err, "nothing to update")
}

func TestProfileValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	r := run(t, "profile", "validate", "--full-name", "Ash Ketchum", "--age", "21", "--city", "Pallet")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Profile form is valid")

	r = run(t, "profile", "validate", "--full-name", "A", "--age", "12")
	assert.ErrorIs(t, r.err, ErrAlreadyHandled)
	assert.Contains(t, r.stderr, "age: You must be at least 18 years old")
	assert.Contains(t, r.stderr, "city: City is required")
	assert.Contains(t, r.stderr, "full_name: Name must be at least 2 characters long")
}

func TestAdmin_RequiresRole(t *testing.T) {
	newTestHome(t)

	for _, args := range [][]string{
		{"admin", "hide", "25"},
		{"admin", "deactivate", "25"},
		{"admin", "stats"},
		{"admin", "add", "--id", "152", "--name", "chikorita"},
	} {
		r := run(t, append([]string{"-u", "ash"}, args...)...)
		assert.ErrorIs(t, r.err, admin.ErrNotAuthorized, "%v", args)
	}

	// Nothing changed
	r := run(t, "search", "pikachu", "--json")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, `"name": "pikachu"`)
}

func TestAdmin_Curation(t *testing.T) {
	newTestHome(t)

	r := run(t, "-u", "oak", "admin", "hide", "25")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Hid #25")

	r = run(t, "search", "pikachu", "--json")
	require.NoError(t, r.err)
	assert.NotContains(t, r.stdout, `"name": "pikachu"`)

	require.NoError(t, run(t, "-u", "oak", "admin", "unhide", "25").err)
	require.NoError(t, run(t, "-u", "oak", "admin", "deactivate", "4").err)

	r = run(t, "-u", "oak", "admin", "add", "--id", "152", "--name", "Chikorita", "--height", "9", "--weight", "64")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Added Chikorita #152")

	r = run(t, "-u", "oak", "admin", "add", "--id", "152", "--name", "chikorita")
	assert.ErrorContains(t, r.err, "already exists")

	r = run(t, "-u", "oak", "admin", "stats", "--json")
	require.NoError(t, r.err)
	var st storage.Stats
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &st))
	assert.Equal(t, 5, st.ActiveEntries)
	assert.Equal(t, 0, st.HiddenEntries)
	assert.Equal(t, 1, st.InactiveEntries)

	r = run(t, "-u", "oak", "admin", "hide", "abc")
	assert.EqualError(t, r.err, `invalid entry id "abc"`)
}

func TestAdmin_NotifyWithoutRecipients(t *testing.T) {
	newTestHome(t)

	r := run(t, "-u", "oak", "admin", "notify", "25", "--json")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No users to notify")
}

func TestAdmin_SeedRoundTrip(t *testing.T) {
	home := newTestHome(t)
	dump := filepath.Join(home, "seed.yaml")

	r := run(t, "-u", "oak", "admin", "seed", "--dump", dump)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Wrote 5 entries")

	seed, err := storage.LoadSeed(dump)
	require.NoError(t, err)
	seed.Entries = append(seed.Entries, model.NewEntry(model.NewEntryParams{ID: 7, Name: "squirtle"}))
	require.NoError(t, storage.SaveSeed(dump, seed))

	r = run(t, "-u", "oak", "admin", "seed", dump)
	require.NoError(t, r.err)

	r = run(t, "show", "squirtle")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Squirtle #7")

	r = run(t, "show", "pikachu")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "electric")
	assert.Contains(t, r.stdout, "speed")

	r = run(t, "-u", "ash", "admin", "seed", "--dump", dump)
	assert.ErrorIs(t, r.err, admin.ErrNotAuthorized)
}

func TestAdmin_GrantBootstrap(t *testing.T) {
	newTestHome(t)

	// oak already holds the role, so ash cannot promote themselves
	r := run(t, "-u", "ash", "admin", "grant", "ash")
	assert.ErrorIs(t, r.err, admin.ErrNotAuthorized)

	r = run(t, "-u", "oak", "admin", "grant", "ash")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "ash is now an admin")

	r = run(t, "-u", "ash", "admin", "stats")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Users             2")
}

func TestExecute_UnknownCommand(t *testing.T) {
	r := run(t, "frobnicate")
	assert.ErrorContains(t, r.err, `unknown command "frobnicate"`)
}
