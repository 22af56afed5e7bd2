package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/tui/layout"
)

const (
	libraryMarker  = "●"
	favoriteMarker = "★"
)

// renderView creates the tabbed list/detail view.
func (a App) renderView() string {
	header := a.renderTabs()
	inputLine := a.renderInputLine()
	suggestions := a.renderSuggestions()

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	if suggestions != "" {
		paneHeight -= lipgloss.Height(suggestions)
		if paneHeight < a.layoutConfig.Pane.MinHeight {
			paneHeight = a.layoutConfig.Pane.MinHeight
		}
	}

	var body string
	if a.showDetail {
		body = a.renderDetailPane(a.width-6, paneHeight, true)
	} else {
		split := layout.CalculateSplit(a.width, a.layoutConfig.Pane)
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			a.renderListPane(split.ListWidth, paneHeight),
			a.renderDetailPane(split.DetailWidth, paneHeight, false),
		)
	}

	parts := []string{header, inputLine}
	if suggestions != "" {
		parts = append(parts, suggestions)
	}
	parts = append(parts, body, a.renderHelpBar())

	content := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderTabs renders the tab bar with the signed-in user on the right.
func (a App) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == a.tab {
			tabs[i] = a.styles.TabActive.Render(label)
		} else {
			tabs[i] = a.styles.Tab.Render(label)
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if a.session == nil {
		return bar
	}

	user := a.session.Profile.Greeting()
	if a.session.IsAdmin() {
		user += " (admin)"
	}
	gap := a.width - 4 - lipgloss.Width(bar) - lipgloss.Width(user)
	if gap < 2 {
		return bar
	}
	return bar + strings.Repeat(" ", gap) + a.styles.Empty.Render(user)
}

// renderInputLine renders the search input or the active tab's filter.
func (a App) renderInputLine() string {
	if a.tab == TabSearch {
		if a.search.Input.Focused() || a.search.Input.Value() != "" {
			line := "/" + a.search.Input.View()
			if a.search.Loading {
				line += " " + a.styles.Empty.Render("searching...")
			}
			return line
		}
		return a.styles.Empty.Render("Press / to search")
	}

	l := a.list(a.tab)
	if l.FilterInput.Focused() {
		return "/" + l.FilterInput.View()
	}
	if q := l.FilterQuery(); q != "" {
		return a.styles.URL.Render("/" + q)
	}
	return a.styles.Empty.Render("Press / to filter")
}

// renderSuggestions renders the dropdown under the search input.
func (a App) renderSuggestions() string {
	suggestions, visible := a.Suggestions()
	if a.tab != TabSearch || !visible {
		return ""
	}

	start, end := layout.CalculateVisibleListItems(
		a.layoutConfig.Suggest.MaxVisible, a.search.SuggestCursor, len(suggestions))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		name := model.Capitalize(suggestions[i])
		if i == a.search.SuggestCursor {
			lines = append(lines, a.styles.SuggestionSelected.Render("› "+name))
		} else {
			lines = append(lines, a.styles.Suggestion.Render("  "+name))
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderListPane(width, height int) string {
	var content strings.Builder

	items := a.Items()
	content.WriteString(a.styles.Title.Render(a.listTitle(len(items))) + "\n\n")

	visibleHeight := layout.CalculateVisibleHeight(height, a.layoutConfig.Pane.ListHeaderLines)
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if len(items) == 0 {
		content.WriteString(a.styles.Empty.Render(a.emptyText()))
	} else {
		cursor := a.Cursor()
		offset := layout.CalculateViewportOffset(cursor, len(items), visibleHeight)

		for i, item := range items {
			if i < offset {
				continue
			}
			if i >= offset+visibleHeight {
				break
			}
			content.WriteString(a.renderItem(item, i == cursor, itemWidth) + "\n")
		}
	}

	style := a.styles.Pane
	if !a.InputFocused() {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

func (a App) listTitle(n int) string {
	switch a.tab {
	case TabLibrary:
		return fmt.Sprintf("My Library (%d)", n)
	case TabFavorites:
		return fmt.Sprintf("Favorites (%d)", n)
	}
	if a.search.Query == "" {
		return "Results"
	}
	return fmt.Sprintf("Results for %q (%d)", a.search.Query, n)
}

func (a App) emptyText() string {
	switch a.tab {
	case TabLibrary:
		if a.library.FilterQuery() != "" {
			return "(no matches)"
		}
		return "(library is empty, press l on a search result)"
	case TabFavorites:
		if a.favorites.FilterQuery() != "" {
			return "(no matches)"
		}
		return "(no favorites yet, press f on an entry)"
	}
	if a.search.Query == "" {
		return "(type to search the catalog)"
	}
	return "(no Pokemon found)"
}

// renderItem renders one list row: markers, number, name with filter highlights.
func (a App) renderItem(item Item, isCursor bool, maxWidth int) string {
	markers := a.markers(item.ID())
	prefix := fmt.Sprintf("%s #%03d ", markers, item.ID())
	nameWidth := maxWidth - layout.VisibleLength(prefix)

	if isCursor {
		name, _ := layout.TruncateText(item.Title(), nameWidth, a.layoutConfig.Text)
		return a.styles.ItemSelected.Render(layout.PadRight(prefix+name, maxWidth))
	}

	name := item.Title()
	if len(item.MatchedIndexes) > 0 {
		name = a.highlightMatches(name, item.MatchedIndexes)
	}
	return a.styles.Item.Render(prefix + layout.TruncateANSIAware(name, nameWidth, a.layoutConfig.Text))
}

// markers returns the two-column membership indicator for an entry.
func (a App) markers(id int) string {
	if a.session == nil {
		return "  "
	}
	lib, fav := " ", " "
	if a.session.Library.IsInLibrary(id) {
		lib = libraryMarker
	}
	if a.session.Library.IsInFavorites(id) {
		fav = favoriteMarker
	}
	return a.styles.Marker.Render(lib + fav)
}

// highlightMatches styles the matched byte positions of name.
func (a App) highlightMatches(name string, matched []int) string {
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range name {
		if set[i] {
			b.WriteString(a.styles.Match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (a App) renderDetailPane(width, height int, active bool) string {
	var content strings.Builder

	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if entry, ok := a.selected(); ok {
		content.WriteString(a.renderDetail(entry, itemWidth))
	}

	style := a.styles.Pane
	if active {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderDetail renders the fields of one entry.
func (a App) renderDetail(e model.Entry, width int) string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render(e.DisplayName()) + a.styles.Empty.Render(fmt.Sprintf("  #%d", e.ID)) + "\n\n")

	field := func(label, value string) {
		b.WriteString(a.styles.Label.Render(label) + a.styles.Value.Render(value) + "\n")
	}

	if types := e.Types(); len(types) > 0 {
		field("Types", strings.Join(types, " / "))
	}
	field("Height", fmt.Sprintf("%.1f m", float64(e.Height)/10))
	field("Weight", fmt.Sprintf("%.1f kg", float64(e.Weight)/10))

	if stats := e.Stats(); len(stats) > 0 {
		b.WriteString("\n" + a.styles.Label.Render("Stats") + "\n")
		for _, name := range model.StatOrder {
			v, ok := stats[name]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  %-16s %3d\n", name, v))
		}
	}

	b.WriteString("\n")
	if a.session != nil {
		var status []string
		if a.session.Library.IsInLibrary(e.ID) {
			status = append(status, libraryMarker+" in library")
		}
		if a.session.Library.IsInFavorites(e.ID) {
			status = append(status, favoriteMarker+" favorite")
		}
		if len(status) > 0 {
			b.WriteString(a.styles.Marker.Render(strings.Join(status, "  ")) + "\n\n")
		}
	}

	api, _ := layout.TruncateText(e.APIURL(), width-10, a.layoutConfig.Text)
	art, _ := layout.TruncateText(e.ImageURL(), width-10, a.layoutConfig.Text)
	field("API", a.styles.URL.Render(api))
	field("Artwork", a.styles.URL.Render(art))

	return b.String()
}

func (a App) renderHelpBar() string {
	var lines []string

	// Message replaces the gap line
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	if local := a.renderHints(a.getContextualHints().All()); local != "" {
		lines = append(lines, a.styles.HintLabel.Render("Local  ")+local)
	}

	if !a.InputFocused() {
		lines = append(lines, a.styles.HintLabel.Render("Global ")+a.renderHints(a.getGlobalHints()))
	}

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
	}

	return msgStyle.Render(prefix + a.messageText)
}
