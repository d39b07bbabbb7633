package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowAutoDismisses(t *testing.T) {
	var n Notification
	var calls int32
	done := make(chan time.Time, 1)

	start := time.Now()
	n.Show(50*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
		done <- time.Now()
	})
	assert.True(t, n.Visible())

	select {
	case firedAt := <-done:
		assert.GreaterOrEqual(t, firedAt.Sub(start), 50*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never dismissed")
	}

	assert.False(t, n.Visible())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHideCancelsCallback(t *testing.T) {
	var n Notification
	var calls int32

	n.Show(30*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })
	n.Hide()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.False(t, n.Visible())
}

func TestDismissFiresOnce(t *testing.T) {
	var n Notification
	var calls int32

	n.Show(40*time.Millisecond, func() { atomic.AddInt32(&calls, 1) })

	assert.True(t, n.Dismiss())
	assert.False(t, n.Dismiss())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestShowAgainReplacesPendingDismissal(t *testing.T) {
	var n Notification
	var first, second int32

	n.Show(30*time.Millisecond, func() { atomic.AddInt32(&first, 1) })
	n.Show(60*time.Millisecond, func() { atomic.AddInt32(&second, 1) })

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))
}

func TestDismissWithoutShow(t *testing.T) {
	var n Notification
	assert.False(t, n.Dismiss())
	n.Hide()
	assert.False(t, n.Visible())
}
