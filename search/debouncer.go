package search

import (
	"sync"
	"time"
)

// QuietPeriod is how long typing must pause before a query fires
const QuietPeriod = 300 * time.Millisecond

// Query is a settled search term with its issue order
type Query struct {
	Seq  uint64
	Term string
}

// Debouncer delays a search until the input has been quiet for the
// configured period. Only the latest term is ever fired.
type Debouncer struct {
	delay time.Duration
	fire  func(Query)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped on every keystroke; stale timers compare against it
	seq     uint64
	pending string
	armed   bool
	stopped bool
}

// NewDebouncer returns a debouncer calling fire on its own goroutine
func NewDebouncer(delay time.Duration, fire func(Query)) *Debouncer {
	if delay <= 0 {
		delay = QuietPeriod
	}
	return &Debouncer{delay: delay, fire: fire}
}

// Type records a new value of the search box and restarts the timer
func (d *Debouncer) Type(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.pending = term
	d.armed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.settle(gen) })
}

// Flush fires the pending term immediately, if any
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	q, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fire(q)
	}
}

// Stop cancels the pending term; later keystrokes are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.armed = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Issued is the sequence number of the latest fired query
func (d *Debouncer) Issued() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

func (d *Debouncer) settle(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	q, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.fire(q)
	}
}

// take must be called with mu held
func (d *Debouncer) take() (Query, bool) {
	if !d.armed || d.stopped {
		return Query{}, false
	}
	d.armed = false
	d.seq++
	return Query{Seq: d.seq, Term: d.pending}, true
}
