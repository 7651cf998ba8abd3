package production

import (
	"context"

	"github.com/comalice/reactiontask/internal/core"
)

// ChannelPublisher forwards transition records to a Go channel.
// Publish never blocks: records are dropped when the channel is full.
type ChannelPublisher struct {
	ch chan<- core.TransitionRecord
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- core.TransitionRecord) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

func (p *ChannelPublisher) Publish(ctx context.Context, record core.TransitionRecord) error {
	select {
	case p.ch <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close closes the output channel. The publisher must not be used after.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
