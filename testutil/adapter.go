package testutil

import (
	"strings"
	"sync"
	"time"
)

// RecordingHost records every host callback. It satisfies core.Host and is
// safe for concurrent use.
type RecordingHost struct {
	mu      sync.Mutex
	signals int
	stops   int
	lines   []string

	// SignalErr and StopErr, when set, are returned by the callbacks.
	SignalErr error
	StopErr   error

	// OnSignal runs after a signal is recorded, outside the host lock.
	OnSignal func()
}

// NewRecordingHost creates an empty RecordingHost.
func NewRecordingHost() *RecordingHost {
	return &RecordingHost{}
}

func (h *RecordingHost) EmitSignal() error {
	h.mu.Lock()
	if h.SignalErr != nil {
		h.mu.Unlock()
		return h.SignalErr
	}
	h.signals++
	hook := h.OnSignal
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	return nil
}

func (h *RecordingHost) StopSignal() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.StopErr != nil {
		return h.StopErr
	}
	h.stops++
	return nil
}

func (h *RecordingHost) DebugLog(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
}

// Signals returns how many signals were emitted.
func (h *RecordingHost) Signals() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.signals
}

// Stops returns how many signals were cleared.
func (h *RecordingHost) Stops() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stops
}

// Lines returns a copy of the debug lines.
func (h *RecordingHost) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}

// HasLine reports whether any debug line contains substr.
func (h *RecordingHost) HasLine(substr string) bool {
	for _, line := range h.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// ManualClock is a clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock set to start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current clock value. Pass it as the machine clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// WaitFor polls cond until it holds or timeout elapses.
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
