package tui

import "strings"

// Hint represents a single keybind hint for display.
type Hint struct {
	Key  string // Display key (e.g., "j/k", "Enter")
	Desc string // Short description (e.g., "move", "open")
}

// HintSet is an ordered collection of hints by group.
type HintSet struct {
	Nav    []Hint // Navigation hints (j/k, gg, etc.)
	Edit   []Hint // Membership hints (l, f)
	Action []Hint // Action hints (Enter, /, Y)
	System []Hint // System hints (q, Esc)
}

// All returns all hints flattened in display order: Nav + Action + Edit + System.
func (h HintSet) All() []Hint {
	result := make([]Hint, 0, len(h.Nav)+len(h.Action)+len(h.Edit)+len(h.System))
	result = append(result, h.Nav...)
	result = append(result, h.Action...)
	result = append(result, h.Edit...)
	result = append(result, h.System...)
	return result
}

// renderHint renders a single hint as "key:desc" with styling.
func (a App) renderHint(h Hint) string {
	return a.styles.HintKey.Render(h.Key) + ":" + a.styles.HintDesc.Render(h.Desc)
}

// renderHints renders hints in horizontal format for the bottom bar: "j/k:move l:library"
func (a App) renderHints(hints []Hint) string {
	if len(hints) == 0 {
		return ""
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = a.renderHint(h)
	}
	return strings.Join(parts, " ")
}

// getContextualHints returns the hints for the current focus and tab.
func (a App) getContextualHints() HintSet {
	switch {
	case a.InputFocused() && a.tab == TabSearch:
		return a.getSearchInputHints()
	case a.InputFocused():
		return a.getFilterInputHints()
	case a.showDetail:
		return a.getDetailHints()
	default:
		return a.getListHints()
	}
}

func (a App) getSearchInputHints() HintSet {
	hints := HintSet{
		Action: []Hint{
			{Key: "Enter", Desc: "search"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "done"},
		},
	}
	if len(a.search.Suggestions) > 0 {
		hints.Nav = []Hint{{Key: "C-n/C-p", Desc: "suggest"}}
	}
	return hints
}

func (a App) getFilterInputHints() HintSet {
	return HintSet{
		Nav: []Hint{
			{Key: "type", Desc: "filter"},
		},
		Action: []Hint{
			{Key: "Enter", Desc: "apply"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "done"},
		},
	}
}

func (a App) getDetailHints() HintSet {
	return HintSet{
		Edit: []Hint{
			{Key: "l", Desc: "library"},
			{Key: "f", Desc: "favorite"},
		},
		Action: []Hint{
			{Key: "Y", Desc: "yank url"},
		},
		System: []Hint{
			{Key: "Esc", Desc: "back"},
		},
	}
}

func (a App) getListHints() HintSet {
	hints := HintSet{
		Nav: []Hint{
			{Key: "j/k", Desc: "move"},
		},
		Action: []Hint{
			{Key: "/", Desc: "search"},
			{Key: "Enter", Desc: "detail"},
			{Key: "Y", Desc: "yank url"},
		},
		Edit: []Hint{
			{Key: "l", Desc: "library"},
			{Key: "f", Desc: "favorite"},
		},
	}
	if a.tab != TabSearch {
		hints.Action[0].Desc = "filter"
		if a.list(a.tab).FilterQuery() != "" {
			hints.System = append(hints.System, Hint{Key: "Esc", Desc: "clear"})
		}
	}
	if a.session != nil && a.session.IsAdmin() && a.moderator != nil {
		hints.Edit = append(hints.Edit, Hint{Key: "H", Desc: "hide"})
	}
	return hints
}

// getGlobalHints returns hints that apply everywhere outside of inputs.
func (a App) getGlobalHints() []Hint {
	return []Hint{
		{Key: "tab", Desc: "next tab"},
		{Key: "1-3", Desc: "jump"},
		{Key: "C-r", Desc: "reload"},
		{Key: "q", Desc: "quit"},
	}
}
