package primitives

// Reaction is one reaction-outcome entry, produced once per completed
// WaitResponse -> ProcessResponse cycle.
type Reaction struct {
	// ElapsedMs is the time since measurement start. It is the entry key.
	ElapsedMs int64 `json:"elapsedMs" yaml:"elapsedMs"`
	// ReactionMs is the latency between signal and response, or the full
	// timeout when the response was implausibly fast.
	ReactionMs int64  `json:"reactionMs" yaml:"reactionMs"`
	Tag        string `json:"tag,omitempty" yaml:"tag,omitempty"`
	TimedOut   bool   `json:"timedOut,omitempty" yaml:"timedOut,omitempty"`
	Clamped    bool   `json:"clamped,omitempty" yaml:"clamped,omitempty"`
}

// LogEvent is one host-tagged event entry.
type LogEvent struct {
	ElapsedMs int64  `json:"elapsedMs" yaml:"elapsedMs"`
	Name      string `json:"name" yaml:"name"`
}

// Dataset is a detached copy of both collection streams.
type Dataset struct {
	Reactions [][]Reaction `json:"reactions" yaml:"reactions"`
	Events    [][]LogEvent `json:"events" yaml:"events"`
}

// Empty reports whether neither stream holds an entry.
func (d Dataset) Empty() bool {
	return len(d.Reactions) == 0 && len(d.Events) == 0
}
