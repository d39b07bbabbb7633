// Package notify drives the transient success acknowledgement shown after a
// lead is accepted. A notification is shown for a fixed duration and then
// dismisses itself; the dismiss callback runs at most once per Show.
package notify

import (
	"sync"
	"time"
)

// Notification is a cancellable, self-dismissing acknowledgement.
// The zero value is ready to use.
type Notification struct {
	mu        sync.Mutex
	timer     *time.Timer
	onDismiss func()
	// generation invalidates callbacks of timers that were replaced or stopped
	generation uint64
	visible    bool
}

// Show makes the notification visible and schedules onDismiss after d.
// Showing again replaces the pending dismissal.
func (n *Notification) Show(d time.Duration, onDismiss func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopLocked()
	n.generation++
	gen := n.generation
	n.visible = true
	n.onDismiss = onDismiss
	n.timer = time.AfterFunc(d, func() {
		n.fire(gen)
	})
}

// Dismiss closes the notification now and runs the dismiss callback if it
// has not run yet.
func (n *Notification) Dismiss() bool {
	n.mu.Lock()
	gen := n.generation
	n.mu.Unlock()
	return n.fire(gen)
}

// Hide closes the notification without running the callback. Used on teardown.
func (n *Notification) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	n.generation++
	n.visible = false
	n.onDismiss = nil
}

// Visible reports whether the notification is currently shown.
func (n *Notification) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visible
}

func (n *Notification) fire(gen uint64) bool {
	n.mu.Lock()
	if gen != n.generation || !n.visible {
		n.mu.Unlock()
		return false
	}
	n.stopLocked()
	n.visible = false
	cb := n.onDismiss
	n.onDismiss = nil
	n.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

func (n *Notification) stopLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
