// Package fuzzy ranks a fixed set of names against free-text queries with
// typo-tolerant Bitap matching.
package fuzzy

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Match is one ranked hit.
type Match struct {
	Name    string
	Index   int      // position in the names passed to New
	Score   float64  // 0 = exact, higher is worse
	Indices [][2]int // inclusive matched rune ranges, when IncludeMatches is set
}

type record struct {
	index int
	name  string
	runes []rune // lowercased
	norm  float64
}

// Matcher holds the prepared name list. It is immutable after New and safe for
// concurrent Search calls.
type Matcher struct {
	opts    Options
	names   []string
	records []record
}

// New builds a matcher over names. Blank and repeated names are skipped, so every
// name appears at most once in results.
func New(names []string, opts Options) *Matcher {
	m := &Matcher{
		opts:  opts,
		names: slices.Clone(names),
	}

	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true
		m.records = append(m.records, record{
			index: i,
			name:  name,
			runes: []rune(strings.ToLower(name)),
			norm:  fieldNorm(name),
		})
	}

	return m
}

// Options returns the matcher's configuration.
func (m *Matcher) Options() Options {
	return m.opts
}

// Len returns the number of searchable names.
func (m *Matcher) Len() int {
	return len(m.records)
}

// SameNames reports whether the matcher was built from exactly these names.
func (m *Matcher) SameNames(names []string) bool {
	return slices.Equal(m.names, names)
}

// Search returns up to limit matches for query, best first. Ties keep name order.
// A limit <= 0 uses the configured default; an empty or blank query matches nothing.
func (m *Matcher) Search(query string, limit int) []Match {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if limit <= 0 {
		limit = m.opts.Limit
	}

	p := newPattern(strings.ToLower(query), m.opts)

	var matches []Match
	for _, rec := range m.records {
		r := p.searchIn(rec.runes)
		if !r.isMatch {
			continue
		}

		norm := rec.norm
		if m.opts.IgnoreFieldNorm {
			norm = 1
		}

		matches = append(matches, Match{
			Name:    rec.name,
			Index:   rec.index,
			Score:   math.Pow(r.score, norm),
			Indices: r.indices,
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(a.Score, b.Score)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches
}

// Names returns the names of matches in rank order.
func Names(matches []Match) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return names
}

// fieldNorm favours short names: 1/sqrt(word count), rounded to three places.
func fieldNorm(s string) float64 {
	tokens := len(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' }))
	if tokens == 0 {
		return 1
	}
	return math.Round(1/math.Sqrt(float64(tokens))*1000) / 1000
}
