package primitives

import "fmt"

// EventID enumerates the events that drive the engine. Events are ephemeral
// and never stored.
type EventID int

const (
	StartMeasure EventID = iota
	SignalTimeElapsed
	SignalSent
	ResponseReceived
	ResponseTimeout
	ResponseProcessed
)

func (e EventID) String() string {
	switch e {
	case StartMeasure:
		return "StartMeasure"
	case SignalTimeElapsed:
		return "SignalTimeElapsed"
	case SignalSent:
		return "SignalSent"
	case ResponseReceived:
		return "ResponseReceived"
	case ResponseTimeout:
		return "ResponseTimeout"
	case ResponseProcessed:
		return "ResponseProcessed"
	default:
		return "Unrecognized Event"
	}
}

// MarshalText renders the event name.
func (e EventID) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Event is a single dispatch. Tag is only meaningful for ResponseReceived,
// where it carries the host's optional positional tag.
//
// Events are value types; create them with NewEvent and do not mutate them.
type Event struct {
	ID  EventID
	Tag string
}

// NewEvent creates an untagged event.
func NewEvent(id EventID) Event {
	return Event{ID: id}
}

// NewTaggedEvent creates an event carrying a host tag.
func NewTaggedEvent(id EventID, tag string) Event {
	return Event{ID: id, Tag: tag}
}

// Events lists every event in declaration order.
var Events = []EventID{StartMeasure, SignalTimeElapsed, SignalSent, ResponseReceived, ResponseTimeout, ResponseProcessed}

// UnmarshalText parses an event name produced by MarshalText.
func (e *EventID) UnmarshalText(text []byte) error {
	for _, candidate := range Events {
		if candidate.String() == string(text) {
			*e = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown event %q", text)
}
