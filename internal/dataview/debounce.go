package dataview

import (
	"sync"
	"time"
)

// SearchDebounceInterval is the quiescence window for search-as-you-type
// handlers.
const SearchDebounceInterval = 300 * time.Millisecond

// Debouncer coalesces bursts of calls into one: only the last function
// passed to Trigger runs, and only after the interval has elapsed without
// another call.
type Debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive interval uses the search
// default.
func NewDebouncer(interval time.Duration) *Debouncer {
	if interval <= 0 {
		interval = SearchDebounceInterval
	}
	return &Debouncer{interval: interval}
}

// Trigger schedules fn, cancelling any previously scheduled call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
