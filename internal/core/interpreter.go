package core

import (
	"time"

	"github.com/comalice/reactiontask/internal/primitives"
)

// entryResult is what an entry action hands back to the dispatch loop.
type entryResult struct {
	// next is the chained event to apply before returning, if any.
	next *primitives.Event
	// sample is the reaction recorded on entry to ProcessResponse.
	sample *primitives.Reaction
}

func chain(id primitives.EventID) *primitives.Event {
	evt := primitives.NewEvent(id)
	return &evt
}

// enterLocked runs the entry action of tr.To. evt is the event that
// triggered the transition.
func (m *Machine) enterLocked(tr primitives.Transition, evt primitives.Event) (entryResult, error) {
	switch tr.To {
	case primitives.WaitForStart:
		m.debugf("Reached WaitForStart State")
		return entryResult{}, nil

	case primitives.Idle:
		m.debugf("Reached Idle State")
		if tr.From == primitives.WaitForStart {
			m.startedAt = m.now()
		}
		m.signalAt = time.Time{}

		delay := m.signalDelayLocked()
		epoch := m.epoch
		m.signalTimer.Start(delay, func() {
			m.fire(epoch, primitives.SignalTimeElapsed)
		})
		m.debugf("Next signal in %v", delay)
		return entryResult{}, nil

	case primitives.SendSignal:
		m.debugf("Reached SendSignal State")
		m.signalTimer.Stop()
		if err := m.host.EmitSignal(); err != nil {
			return entryResult{}, err
		}
		m.signalAt = m.now()
		return entryResult{next: chain(primitives.SignalSent)}, nil

	case primitives.WaitResponse:
		m.debugf("Reached WaitResponse State")
		epoch := m.epoch
		m.responseTimer.Start(m.responseTimeout, func() {
			m.fire(epoch, primitives.ResponseTimeout)
		})
		return entryResult{}, nil

	case primitives.ProcessResponse:
		m.debugf("Reached ProcessResponse State")
		m.responseTimer.Stop()

		now := m.now()
		sample := primitives.Reaction{
			ElapsedMs:  now.Sub(m.startedAt).Milliseconds(),
			ReactionMs: now.Sub(m.signalAt).Milliseconds(),
			TimedOut:   evt.ID == primitives.ResponseTimeout,
		}
		if evt.ID == primitives.ResponseReceived {
			sample.Tag = evt.Tag
		}
		// Faster than a human can react: treat it as stray input, i.e. a miss.
		if sample.ReactionMs < m.reactionFloor.Milliseconds() {
			sample.ReactionMs = m.responseTimeout.Milliseconds()
			sample.Clamped = true
		}

		if err := m.host.StopSignal(); err != nil {
			return entryResult{}, err
		}
		if m.reactions.Append(sample) {
			m.debugf("Milestone added")
		}
		m.debugf("ms from start: %d, ms reaction: %d", sample.ElapsedMs, sample.ReactionMs)
		return entryResult{next: chain(primitives.ResponseProcessed), sample: &sample}, nil
	}

	return entryResult{}, nil
}

// signalDelayLocked draws a uniform delay in [minSignal, maxSignal] at
// millisecond granularity.
func (m *Machine) signalDelayLocked() time.Duration {
	span := int64((m.maxSignal - m.minSignal) / time.Millisecond)
	return m.minSignal + time.Duration(m.rand.Int64N(span+1))*time.Millisecond
}
