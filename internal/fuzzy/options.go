package fuzzy

// Options controls approximate matching. Field meanings follow the usual Bitap
// parameters: a match is accepted when errors/len(pattern) plus the distance penalty
// stays at or below Threshold.
type Options struct {
	// Threshold is the highest accepted score; 0 requires an exact match, 1 accepts anything.
	Threshold float64

	// Location is the position in the text where the pattern is expected.
	Location int

	// Distance scales the penalty for matches far from Location.
	// A match Distance characters away costs as much as a fully wrong pattern.
	Distance int

	// MinMatchCharLength drops matches whose matched runs are all shorter than this.
	MinMatchCharLength int

	// FindAllMatches keeps scanning the whole text after a perfect match.
	FindAllMatches bool

	// IgnoreLocation drops the distance penalty entirely.
	IgnoreLocation bool

	// IgnoreFieldNorm disables the shorter-name bonus.
	IgnoreFieldNorm bool

	// IncludeMatches records matched index ranges on each Match.
	IncludeMatches bool

	// Limit is the default result count used when Search is called with limit <= 0.
	Limit int
}

// ResultMode is the looser configuration used for full search results.
var ResultMode = Options{
	Threshold:          0.4,
	Distance:           100,
	MinMatchCharLength: 1,
	IncludeMatches:     true,
	Limit:              12,
}

// SuggestionMode is the tighter configuration used for type-ahead suggestions.
var SuggestionMode = Options{
	Threshold:          0.3,
	Distance:           50,
	MinMatchCharLength: 1,
	IncludeMatches:     true,
	Limit:              8,
}
