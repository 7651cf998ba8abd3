package primitives

// Transition is an immutable (event, required state, resulting state) triple.
type Transition struct {
	Event EventID
	From  StateID
	To    StateID
}

// NewTransition creates a Transition.
func NewTransition(event EventID, from, to StateID) Transition {
	return Transition{Event: event, From: from, To: to}
}

// Table maps an event to its candidate transitions in registration order.
// The zero value is an empty table that matches nothing.
type Table struct {
	byEvent map[EventID][]Transition
	order   []Transition
}

// NewTable creates a table holding the given transitions.
func NewTable(transitions ...Transition) *Table {
	t := &Table{}
	t.Define(transitions)
	return t
}

// Define replaces the whole table. Duplicate (event, from) pairs are kept;
// the first one registered wins at lookup.
func (t *Table) Define(transitions []Transition) {
	t.byEvent = make(map[EventID][]Transition, len(transitions))
	t.order = append([]Transition(nil), transitions...)
	for _, tr := range transitions {
		t.byEvent[tr.Event] = append(t.byEvent[tr.Event], tr)
	}
}

// Lookup returns the first transition registered for event whose From
// matches current.
func (t *Table) Lookup(event EventID, current StateID) (Transition, bool) {
	for _, tr := range t.byEvent[event] {
		if tr.From == current {
			return tr, true
		}
	}
	return Transition{}, false
}

// Candidates returns a copy of the transitions registered for event.
func (t *Table) Candidates(event EventID) []Transition {
	return append([]Transition(nil), t.byEvent[event]...)
}

// Transitions returns a copy of every transition in registration order.
func (t *Table) Transitions() []Transition {
	return append([]Transition(nil), t.order...)
}

// Len returns the number of registered transitions.
func (t *Table) Len() int {
	return len(t.order)
}
