/* notify.go
 * Contains the Notifier that backs status banners and popup notifications. A notice stays visible for a fixed
 * time and is then dismissed on its own
 */

package notify

import (
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible
const DefaultTTL = 3500 * time.Millisecond

// Level of a notice
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a message shown to the user
type Notice struct {
	Level   Level
	Message string
	At      time.Time
}

// Notifier holds the current notice
type Notifier struct {
	ttl time.Duration

	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	seq     uint64
}

// New creates a Notifier whose notices are dismissed after ttl
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl}
}

// Success shows a success notice
func (n *Notifier) Success(message string) { n.Push(LevelSuccess, message) }

// Error shows an error notice
func (n *Notifier) Error(message string) { n.Push(LevelError, message) }

// Info shows an informational notice
func (n *Notifier) Info(message string) { n.Push(LevelInfo, message) }

// Push replaces the current notice and restarts the dismiss timer
func (n *Notifier) Push(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	seq := n.seq
	n.current = &Notice{Level: level, Message: message, At: time.Now()}
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// a newer notice owns the slot
		if n.seq == seq {
			n.current = nil
			n.timer = nil
		}
	})
}

// Current returns the visible notice, if any
func (n *Notifier) Current() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

// Dismiss hides the current notice immediately
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}
