/* debounce.go
 * Contains the debouncer used by search-as-you-type inputs. Each keystroke cancels the pending timer, a request that
 * already started is not cancelled
 */

package search

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a search is issued
const DefaultDelay = 300 * time.Millisecond

// Debouncer delays calls to fn until no new term arrived for the configured delay
type Debouncer struct {
	delay time.Duration
	fn    func(term string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64 // identifies the latest trigger, earlier timers that already fired do nothing
	stopped bool
	running sync.WaitGroup
}

// NewDebouncer creates a Debouncer that calls fn with the last term once input settles
func NewDebouncer(delay time.Duration, fn func(term string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger records a new term, replacing any pending one
func (d *Debouncer) Trigger(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped || seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.running.Add(1)
		d.mu.Unlock()

		defer d.running.Done()
		d.fn(term)
	})
}

// Stop cancels the pending term and waits for a call that already started. Further triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.running.Wait()
}
