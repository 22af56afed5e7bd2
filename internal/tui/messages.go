package tui

import (
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/search"
)

// debounceMsg is delivered when a debounce timer expires.
type debounceMsg struct {
	ticket search.Ticket
	query  string
}

// resultsMsg carries a hydrated search response.
type resultsMsg struct {
	gen     search.Generation
	query   string
	entries []model.Entry
	err     error
}

// blurGraceMsg hides suggestions once the grace period after blur has passed.
type blurGraceMsg struct {
	seq int
}

type clearMessageMsg struct {
	seq int
}
