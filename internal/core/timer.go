package core

import (
	"sync"
	"time"
)

// Timer fires an action once after an interval unless stopped first.
//
// At most one delay is armed at a time. Start re-arms and invalidates any
// pending fire; Stop disarms. The armed check and the disarm happen under the
// same lock, so a stopped delay never invokes its action.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	armed bool

	// inflight counts delays that may still run their callback.
	inflight sync.WaitGroup
}

// NewTimer creates an unarmed Timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Start cancels any pending fire and arms the timer. When interval elapses
// and the timer is still armed with this generation, action runs exactly
// once on the timer goroutine and the timer returns to unarmed.
func (t *Timer) Start(interval time.Duration, action func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	t.armed = true

	t.inflight.Add(1)
	t.timer = time.AfterFunc(interval, func() {
		defer t.inflight.Done()

		t.mu.Lock()
		if !t.armed || t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.armed = false
		t.timer = nil
		t.mu.Unlock()

		action()
	})
}

// Stop disarms the timer. Idempotent and safe on a timer never started.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.timer != nil && t.timer.Stop() {
		// The callback will never run, so release its slot here.
		t.inflight.Done()
	}
	t.timer = nil
	t.armed = false
}

// Armed reports whether a fire is pending.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Wait blocks until no callback of this timer is running or pending.
// Call it after Stop, and never from inside an action.
func (t *Timer) Wait() {
	t.inflight.Wait()
}
