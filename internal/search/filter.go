package search

import (
	"github.com/nikbrunner/dex/internal/model"
	sahilm "github.com/sahilm/fuzzy"
)

// FilterResult is a subsequence match over an in-memory entry list.
type FilterResult struct {
	Entry          model.Entry
	MatchedIndexes []int
	Score          int
}

// entryNames implements sahilm.Source for an entry slice.
type entryNames []model.Entry

func (en entryNames) String(i int) string {
	return en[i].Name
}

func (en entryNames) Len() int {
	return len(en)
}

// FilterEntries narrows an already loaded list (library, favorites) by subsequence
// matching on names. Results are sorted by match score (best first).
func FilterEntries(entries []model.Entry, query string) []FilterResult {
	if query == "" {
		return nil
	}

	matches := sahilm.FindFrom(query, entryNames(entries))

	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Entry:          entries[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
