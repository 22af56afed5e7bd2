package tui

import (
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
)

// Item is one row of the active tab's list.
type Item struct {
	Entry model.Entry

	// MatchedIndexes holds name positions matched by the local filter, if any.
	MatchedIndexes []int
}

// ID returns the entry ID.
func (i Item) ID() int {
	return i.Entry.ID
}

// Title returns a display title for the item.
func (i Item) Title() string {
	return i.Entry.DisplayName()
}

func itemsFromEntries(entries []model.Entry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return items
}

func itemsFromMatches(matches []search.FilterResult) []Item {
	items := make([]Item, len(matches))
	for i, m := range matches {
		items[i] = Item{Entry: m.Entry, MatchedIndexes: m.MatchedIndexes}
	}
	return items
}
