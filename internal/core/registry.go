package core

import (
	"context"
	"time"

	"github.com/comalice/reactiontask/internal/primitives"
)

// TransitionRecord describes one applied transition, or a forced reset when
// Reset is true.
type TransitionRecord struct {
	Event primitives.EventID `json:"event" yaml:"event"`
	From  primitives.StateID `json:"from" yaml:"from"`
	To    primitives.StateID `json:"to" yaml:"to"`
	Reset bool               `json:"reset,omitempty" yaml:"reset,omitempty"`
	// Sample is set on entry to ProcessResponse.
	Sample    *primitives.Reaction `json:"sample,omitempty" yaml:"sample,omitempty"`
	Timestamp time.Time            `json:"timestamp" yaml:"timestamp"`
}

// Publisher observes the machine. Publish runs inside the machine's critical
// section and must not block or call back into the machine.
type Publisher interface {
	Publish(ctx context.Context, record TransitionRecord) error
}

// publishers fans a record out to every registered Publisher.
type publishers []Publisher

func (ps publishers) publish(ctx context.Context, record TransitionRecord) []error {
	var errs []error
	for _, p := range ps {
		if err := p.Publish(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
