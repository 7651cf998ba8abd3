package primitives

import "fmt"

// StateID enumerates the engine states. Exactly one is current at a time.
type StateID int

const (
	WaitForStart StateID = iota
	Idle
	SendSignal
	WaitResponse
	ProcessResponse
)

// States lists every state in declaration order.
var States = []StateID{WaitForStart, Idle, SendSignal, WaitResponse, ProcessResponse}

func (s StateID) String() string {
	switch s {
	case WaitForStart:
		return "WaitForStart"
	case Idle:
		return "Idle"
	case SendSignal:
		return "SendSignal"
	case WaitResponse:
		return "WaitResponse"
	case ProcessResponse:
		return "ProcessResponse"
	default:
		return "Unrecognized State"
	}
}

// MarshalText renders the state name so snapshots read well in JSON and YAML.
func (s StateID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *StateID) UnmarshalText(text []byte) error {
	for _, candidate := range States {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
