package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/storage"
	"github.com/spf13/cobra"
)

// membership reports an entry's state for the signed-in user.
type membership interface {
	IsInLibrary(entryID int) bool
	IsInFavorites(entryID int) bool
}

// entryView is the JSON shape of an entry with the caller's membership.
type entryView struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Types     []string       `json:"types"`
	Height    int            `json:"height"`
	Weight    int            `json:"weight"`
	Stats     map[string]int `json:"stats,omitempty"`
	APIURL    string         `json:"apiUrl"`
	ImageURL  string         `json:"imageUrl"`
	InLibrary bool           `json:"inLibrary"`
	Favorite  bool           `json:"favorite"`
	Hidden    bool           `json:"hidden,omitempty"`
	Inactive  bool           `json:"inactive,omitempty"`
}

func newEntryView(e model.Entry, m membership) entryView {
	types := e.Types()
	if types == nil {
		types = []string{}
	}
	return entryView{
		ID:        e.ID,
		Name:      e.Name,
		Types:     types,
		Height:    e.Height,
		Weight:    e.Weight,
		Stats:     e.Stats(),
		APIURL:    e.APIURL(),
		ImageURL:  e.ImageURL(),
		InLibrary: m.IsInLibrary(e.ID),
		Favorite:  m.IsInFavorites(e.ID),
		Hidden:    e.Hidden,
		Inactive:  !e.Active,
	}
}

func entryViews(entries []model.Entry, m membership) []entryView {
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = newEntryView(e, m)
	}
	return views
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEntryLine prints one list row: markers, number, name and types.
func printEntryLine(w io.Writer, e model.Entry, m membership) {
	lib, fav := " ", " "
	if m.IsInLibrary(e.ID) {
		lib = "●"
	}
	if m.IsInFavorites(e.ID) {
		fav = "★"
	}
	fmt.Fprintf(w, "%s%s #%03d %-14s %s\n", lib, fav, e.ID, e.DisplayName(),
		mutedLabel.Sprint(strings.Join(e.Types(), "/")))
}

func printEntryDetail(w io.Writer, e model.Entry, m membership) {
	fmt.Fprintf(w, "%s #%d\n", e.DisplayName(), e.ID)
	if types := e.Types(); len(types) > 0 {
		fmt.Fprintf(w, "  %-9s %s\n", "Types", strings.Join(types, " / "))
	}
	fmt.Fprintf(w, "  %-9s %.1f m\n", "Height", float64(e.Height)/10)
	fmt.Fprintf(w, "  %-9s %.1f kg\n", "Weight", float64(e.Weight)/10)

	if stats := e.Stats(); len(stats) > 0 {
		fmt.Fprintln(w, "  Stats")
		for _, name := range model.StatOrder {
			if v, ok := stats[name]; ok {
				fmt.Fprintf(w, "    %-16s %3d\n", name, v)
			}
		}
	}

	var status []string
	if m.IsInLibrary(e.ID) {
		status = append(status, "in library")
	}
	if m.IsInFavorites(e.ID) {
		status = append(status, "favorite")
	}
	if e.Hidden {
		status = append(status, "hidden")
	}
	if !e.Active {
		status = append(status, "inactive")
	}
	if len(status) > 0 {
		fmt.Fprintf(w, "  %-9s %s\n", "Status", strings.Join(status, ", "))
	}

	fmt.Fprintf(w, "  %-9s %s\n", "API", e.APIURL())
	fmt.Fprintf(w, "  %-9s %s\n", "Artwork", e.ImageURL())
}

func printSuccess(cmd *cobra.Command, format string, args ...any) {
	successLabel.Fprint(cmd.OutOrStdout(), "✓ ")
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

// resolveEntry looks an entry up by number or by name.
func (a *app) resolveEntry(cmd *cobra.Command, ref string) (*model.Entry, error) {
	ctx := cmd.Context()
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")

	var (
		e   *model.Entry
		err error
	)
	if id, convErr := strconv.Atoi(ref); convErr == nil {
		e, err = a.store.GetEntry(ctx, id)
	} else {
		e, err = a.store.GetEntryByName(ctx, strings.ToLower(ref))
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no entry %q", ref)
	}
	return e, err
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}
