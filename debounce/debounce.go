// Package debounce converts a rapidly-changing input value into a
// stabilized value emitted only after a quiet period. It is the sole gate
// for issuing search requests, preventing one request per keystroke.
package debounce

import (
	"sync"
	"time"
)

// DefaultQuiet is the default quiet period before a value is emitted.
const DefaultQuiet = 500 * time.Millisecond

// Debouncer emits the latest value passed to Set once the value has been
// left unchanged for the quiet period. Every Set restarts the timer and
// cancels any pending emission. After Stop, nothing is ever emitted.
type Debouncer struct {
	mu      sync.Mutex
	quiet   time.Duration
	emit    func(string)
	timer   *time.Timer
	stopped bool
}

// New creates a Debouncer that calls emit with the settled value. The
// emit callback runs on a timer goroutine; callers that need delivery on
// a specific goroutine should forward the value through a channel.
// A non-positive quiet period falls back to DefaultQuiet.
func New(quiet time.Duration, emit func(string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{quiet: quiet, emit: emit}
}

// Set feeds a new input value, restarting the quiet-period timer.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.emit(value)
		}
	})
}

// Cancel discards any pending emission without disabling the Debouncer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending emission and disables the Debouncer
// permanently. No emission happens after Stop returns.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
