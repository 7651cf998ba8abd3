package primitives

// TableBuilder builds a Table fluently.
//
//	table := NewTableBuilder().
//		On(StartMeasure).From(WaitForStart).To(Idle).
//		Build()
type TableBuilder struct {
	transitions []Transition
}

// EdgeBuilder configures a single transition started by TableBuilder.On.
type EdgeBuilder struct {
	b     *TableBuilder
	event EventID
	from  StateID
}

// NewTableBuilder creates an empty TableBuilder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// On starts a transition triggered by event.
func (b *TableBuilder) On(event EventID) *EdgeBuilder {
	return &EdgeBuilder{b: b, event: event}
}

// From sets the state the transition is valid in.
func (e *EdgeBuilder) From(state StateID) *EdgeBuilder {
	e.from = state
	return e
}

// To sets the resulting state and registers the transition.
func (e *EdgeBuilder) To(state StateID) *TableBuilder {
	e.b.transitions = append(e.b.transitions, NewTransition(e.event, e.from, state))
	return e.b
}

// Build returns the table. The builder may be reused afterwards.
func (b *TableBuilder) Build() *Table {
	return NewTable(b.transitions...)
}

// ReactionTable returns the fixed grammar of the reaction-time experiment.
func ReactionTable() *Table {
	return NewTableBuilder().
		// start
		On(StartMeasure).From(WaitForStart).To(Idle).
		// default flow
		On(SignalTimeElapsed).From(Idle).To(SendSignal).
		On(SignalSent).From(SendSignal).To(WaitResponse).
		On(ResponseReceived).From(WaitResponse).To(ProcessResponse).
		On(ResponseProcessed).From(ProcessResponse).To(Idle).
		// response never came
		On(ResponseTimeout).From(WaitResponse).To(ProcessResponse).
		Build()
}
