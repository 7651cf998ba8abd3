// Package core provides the runtime core of the reaction-time engine.
// This includes the Machine, its two timers and the entry action of every
// state. Dependencies: internal/primitives.
//go:generate go test ./... -race

package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"

	"github.com/comalice/reactiontask/internal/primitives"
)

// Snapshot is a point-in-time view of the machine.
type Snapshot struct {
	State          primitives.StateID `json:"state" yaml:"state"`
	Initial        primitives.StateID `json:"initial" yaml:"initial"`
	StartedAt      time.Time          `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	SignalSentAt   time.Time          `json:"signalSentAt,omitempty" yaml:"signalSentAt,omitempty"`
	ReactionGroups int                `json:"reactionGroups" yaml:"reactionGroups"`
	EventGroups    int                `json:"eventGroups" yaml:"eventGroups"`
	Closed         bool               `json:"closed,omitempty" yaml:"closed,omitempty"`
}

// Machine sequences one measurement session:
// WaitForStart -> Idle -> SendSignal -> WaitResponse -> ProcessResponse -> Idle.
//
// Every operation, including timer fires, runs under one mutex, so event
// processing is serialised. Chained transitions (SignalSent,
// ResponseProcessed) are applied by a loop inside the same critical section.
type Machine struct {
	mu      sync.Mutex
	table   *primitives.Table
	initial primitives.StateID
	state   primitives.StateID
	host    Host

	signalTimer   *Timer
	responseTimer *Timer

	startedAt time.Time
	signalAt  time.Time
	// epoch advances on every reset; timer fires from an older epoch are dropped.
	epoch  uint64
	closed bool

	reactions *primitives.Stream[primitives.Reaction]
	events    *primitives.Stream[primitives.LogEvent]

	minSignal       time.Duration
	maxSignal       time.Duration
	responseTimeout time.Duration
	reactionFloor   time.Duration
	now             func() time.Time
	rand            *rand.Rand
	logger          micrologger.Logger
	publishers      publishers
}

// NewMachine creates a Machine in WaitForStart that drives host.
func NewMachine(host Host, opts ...Option) (*Machine, error) {
	if host == nil {
		return nil, microerror.Maskf(invalidConfigError, "host must not be empty")
	}

	m := &Machine{
		table:           primitives.ReactionTable(),
		initial:         primitives.WaitForStart,
		state:           primitives.WaitForStart,
		host:            host,
		signalTimer:     NewTimer(),
		responseTimer:   NewTimer(),
		reactions:       primitives.NewStream[primitives.Reaction](),
		events:          primitives.NewStream[primitives.LogEvent](),
		minSignal:       DefaultMinSignal,
		maxSignal:       DefaultMaxSignal,
		responseTimeout: DefaultResponseTimeout,
		reactionFloor:   DefaultReactionFloor,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.minSignal <= 0 {
		return nil, microerror.Maskf(invalidConfigError, "minimum signal delay must be positive, got %v", m.minSignal)
	}
	if m.maxSignal < m.minSignal {
		return nil, microerror.Maskf(invalidConfigError, "maximum signal delay %v is below minimum %v", m.maxSignal, m.minSignal)
	}
	if m.responseTimeout <= 0 {
		return nil, microerror.Maskf(invalidConfigError, "response timeout must be positive, got %v", m.responseTimeout)
	}
	if m.reactionFloor < 0 || m.reactionFloor >= m.responseTimeout {
		return nil, microerror.Maskf(invalidConfigError, "reaction floor %v must be within [0, %v)", m.reactionFloor, m.responseTimeout)
	}
	if m.now == nil {
		return nil, microerror.Maskf(invalidConfigError, "clock must not be empty")
	}
	if m.rand == nil {
		seed := uint64(time.Now().UnixNano())
		m.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	return m, nil
}

// State returns the current state.
func (m *Machine) State() primitives.StateID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Table returns a copy of the transition table.
func (m *Machine) Table() *primitives.Table {
	return primitives.NewTable(m.table.Transitions()...)
}

// ProcessEvent applies the first transition registered for evt whose source
// is the current state, runs the entry action of the target and follows any
// chained transitions. Events with no matching transition are discarded.
func (m *Machine) ProcessEvent(evt primitives.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return microerror.Mask(closedError)
	}
	return m.dispatchLocked(evt)
}

// Start resets the machine and dispatches StartMeasure in one step.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return microerror.Mask(closedError)
	}
	m.resetLocked()
	return m.dispatchLocked(primitives.NewEvent(primitives.StartMeasure))
}

// Respond dispatches ResponseReceived carrying the optional tag.
func (m *Machine) Respond(tag string) error {
	return m.ProcessEvent(primitives.NewTaggedEvent(primitives.ResponseReceived, tag))
}

// Reset stops both timers, clears the collected data and forces the machine
// back to WaitForStart without consulting the transition table.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return microerror.Mask(closedError)
	}
	m.resetLocked()
	return nil
}

// AddMilestone makes the next entry of each stream open a new group.
func (m *Machine) AddMilestone() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return microerror.Mask(closedError)
	}
	m.reactions.Milestone()
	m.events.Milestone()
	return nil
}

// AddLogEvent records name at the current elapsed time. It is a no-op while
// no measurement is running.
func (m *Machine) AddLogEvent(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return microerror.Mask(closedError)
	}
	if m.state == primitives.WaitForStart {
		return nil
	}

	elapsed := m.now().Sub(m.startedAt).Milliseconds()
	if m.events.Append(primitives.LogEvent{ElapsedMs: elapsed, Name: name}) {
		m.debugf("Milestone added")
	}
	return nil
}

// Dataset returns a detached copy of both streams.
func (m *Machine) Dataset() primitives.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()

	return primitives.Dataset{
		Reactions: m.reactions.Groups(),
		Events:    m.events.Groups(),
	}
}

// Snapshot returns the current machine view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State:          m.state,
		Initial:        m.initial,
		StartedAt:      m.startedAt,
		SignalSentAt:   m.signalAt,
		ReactionGroups: m.reactions.Len(),
		EventGroups:    m.events.Len(),
		Closed:         m.closed,
	}
}

// Close stops both timers and waits for in-flight timer callbacks. Later
// operations fail with closedError. Safe to call multiple times.
func (m *Machine) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.epoch++
	m.signalTimer.Stop()
	m.responseTimer.Stop()
	m.mu.Unlock()

	m.signalTimer.Wait()
	m.responseTimer.Wait()
	return nil
}

// dispatchLocked applies evt and every chained event that follows it.
func (m *Machine) dispatchLocked(evt primitives.Event) error {
	for {
		tr, ok := m.table.Lookup(evt.ID, m.state)
		if !ok {
			m.debugf("Discarded event %s in state %s", evt.ID, m.state)
			return nil
		}

		m.debugf("%s: %s -> %s", evt.ID, m.state, tr.To)
		m.state = tr.To

		res, err := m.enterLocked(tr, evt)
		if err != nil {
			m.abortLocked(err)
			return microerror.Mask(err)
		}
		m.publishLocked(TransitionRecord{
			Event:     evt.ID,
			From:      tr.From,
			To:        tr.To,
			Sample:    res.sample,
			Timestamp: m.now(),
		})

		if res.next == nil {
			return nil
		}
		evt = *res.next
	}
}

// fire is the timer callback. It drops events armed before the last reset.
func (m *Machine) fire(epoch uint64, id primitives.EventID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || epoch != m.epoch {
		m.debugf("Discarded stale timer event %s", id)
		return
	}
	if err := m.dispatchLocked(primitives.NewEvent(id)); err != nil && m.logger != nil {
		m.logger.Errorf(context.Background(), err, "timer event %s failed", id)
	}
}

func (m *Machine) resetLocked() {
	m.signalTimer.Stop()
	m.responseTimer.Stop()
	m.epoch++

	from := m.state
	m.debugf("RESET: %s -> %s", from, m.initial)
	m.state = m.initial
	m.startedAt = time.Time{}
	m.signalAt = time.Time{}
	m.reactions.Reset()
	m.events.Reset()

	m.publishLocked(TransitionRecord{
		From:      from,
		To:        m.initial,
		Reset:     true,
		Timestamp: m.now(),
	})
}

// abortLocked returns to WaitForStart after a failed entry action. Collected
// data is kept so the host can still export it.
func (m *Machine) abortLocked(cause error) {
	m.signalTimer.Stop()
	m.responseTimer.Stop()
	m.epoch++

	from := m.state
	m.debugf("ABORT: %s -> %s: %v", from, m.initial, cause)
	m.state = m.initial

	m.publishLocked(TransitionRecord{
		From:      from,
		To:        m.initial,
		Reset:     true,
		Timestamp: m.now(),
	})
}

func (m *Machine) publishLocked(record TransitionRecord) {
	for _, err := range m.publishers.publish(context.Background(), record) {
		if m.logger != nil {
			m.logger.Errorf(context.Background(), err, "publishing transition %s -> %s failed", record.From, record.To)
		}
	}
}

func (m *Machine) debugf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	m.host.DebugLog(line)
	if m.logger != nil {
		m.logger.Debugf(context.Background(), "%s", line)
	}
}
