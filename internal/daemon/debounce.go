package daemon

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of events: the callback passed to the last
// Trigger runs once the interval has passed without another Trigger.
type Debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool

	// gen identifies the current timer; a fire from an older timer is ignored.
	gen uint64
}

// NewDebouncer creates a Debouncer. A non-positive interval runs callbacks
// on the next timer tick.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: max(interval, 0)}
}

// Trigger (re)starts the quiet period with callback as the pending action.
// It is a no-op after Stop.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
}

// fire runs the pending callback if gen is still the current timer. A timer
// stopped after it already fired may still reach here.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	cb := d.callback
	d.callback = nil
	if d.stopped {
		cb = nil
	}
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Stop cancels any pending callback. It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.callback = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
