// Options for configuring Machine instances.
package core

import (
	"math/rand/v2"
	"time"

	"github.com/giantswarm/micrologger"
)

const (
	// DefaultMinSignal and DefaultMaxSignal bound the random delay before
	// each stimulus.
	DefaultMinSignal = 7 * time.Second
	DefaultMaxSignal = 25 * time.Second
	// DefaultResponseTimeout is how long a stimulus waits for a response.
	DefaultResponseTimeout = 5 * time.Second
	// DefaultReactionFloor is the fastest plausible human reaction. Faster
	// responses are recorded as misses.
	DefaultReactionFloor = 100 * time.Millisecond
)

// Option applies configuration to Machine via functional options pattern.
type Option func(*Machine)

// WithSignalInterval sets the range the inter-signal delay is drawn from.
func WithSignalInterval(min, max time.Duration) Option {
	return func(m *Machine) {
		m.minSignal = min
		m.maxSignal = max
	}
}

// WithResponseTimeout sets how long WaitResponse lasts before timing out.
func WithResponseTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.responseTimeout = d
	}
}

// WithReactionFloor sets the reaction time below which a response counts as
// a miss.
func WithReactionFloor(d time.Duration) Option {
	return func(m *Machine) {
		m.reactionFloor = d
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// WithRand sets the random source for inter-signal delays.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) {
		m.rand = r
	}
}

// WithLogger mirrors debug lines to logger and reports errors from
// timer-driven dispatches.
func WithLogger(logger micrologger.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithPublisher adds publishers notified after every transition and reset.
func WithPublisher(ps ...Publisher) Option {
	return func(m *Machine) {
		m.publishers = append(m.publishers, ps...)
	}
}
