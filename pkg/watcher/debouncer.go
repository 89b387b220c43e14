// Package watcher notices profile files changing on disk.
package watcher

import (
	"sort"
	"sync"
	"time"
)

// DefaultDebounce is how long the directory must be quiet before a reload
const DefaultDebounce = 250 * time.Millisecond

// maxWaitFactor bounds how long a steady stream of writes can hold back a
// flush, as a multiple of the quiet period.
const maxWaitFactor = 8

// Debouncer gathers the profile names touched during a burst of file
// events and hands them to flush once the directory goes quiet.
// Editors write a profile as create+write+chmod; one reload is enough.
type Debouncer struct {
	wait    time.Duration
	maxWait time.Duration
	flush   func(names []string)

	mu      sync.Mutex
	pending map[string]struct{}
	first   time.Time
	timer   *time.Timer
	gen     uint64

	// For testing
	now func() time.Time
}

// NewDebouncer returns a Debouncer; zero or negative wait means DefaultDebounce
func NewDebouncer(wait time.Duration, flush func(names []string)) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{
		wait:    wait,
		maxWait: wait * maxWaitFactor,
		flush:   flush,
		now:     time.Now,
	}
}

// Add records name as changed and re-arms the quiet timer. A burst that
// never goes quiet is still flushed once maxWait has passed since its
// first name.
func (d *Debouncer) Add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if len(d.pending) == 0 {
		d.pending = make(map[string]struct{})
		d.first = now
	}
	d.pending[name] = struct{}{}

	delay := d.wait
	if left := d.maxWait - now.Sub(d.first); left < delay {
		delay = max(left, 0)
	}

	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, func() { d.fire(gen) })
}

// fire flushes the batch unless a later Add or Cancel superseded gen.
// A timer that already fired when Stop was called lands here stale.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	names := make([]string, 0, len(d.pending))
	for n := range d.pending {
		names = append(names, n)
	}
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	sort.Strings(names)
	d.flush(names)
}

// Pending returns how many distinct names wait for the next flush
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Cancel drops the pending batch
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
