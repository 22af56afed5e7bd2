package search

import (
	"sync/atomic"
	"time"
)

// DefaultDebounce is the quiet period before a typed query is searched.
const DefaultDebounce = 300 * time.Millisecond

// Ticket identifies one scheduled debounce timer.
type Ticket uint64

// Debouncer coalesces bursts of input. Each Schedule call supersedes every earlier
// ticket; when a timer fires, its ticket is acted on only if it is still Live.
// The timer itself is owned by the caller (a tea.Tick in the TUI).
type Debouncer struct {
	delay  time.Duration
	latest atomic.Uint64
}

// NewDebouncer creates a Debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule issues a new ticket and invalidates all earlier ones.
func (d *Debouncer) Schedule() Ticket {
	return Ticket(d.latest.Add(1))
}

// Cancel invalidates every outstanding ticket.
func (d *Debouncer) Cancel() {
	d.latest.Add(1)
}

// Live reports whether t is the most recently scheduled ticket.
func (d *Debouncer) Live(t Ticket) bool {
	return uint64(t) == d.latest.Load()
}

// Generation identifies one issued search request.
type Generation uint64

// RequestTracker orders in-flight requests so a slow stale response cannot overwrite
// a newer one.
type RequestTracker struct {
	latest atomic.Uint64
}

// Next issues the generation for a new request.
func (r *RequestTracker) Next() Generation {
	return Generation(r.latest.Add(1))
}

// IsLatest reports whether g belongs to the most recent request.
func (r *RequestTracker) IsLatest(g Generation) bool {
	return uint64(g) == r.latest.Load()
}
