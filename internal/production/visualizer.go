// Package production provides production integrations: data export,
// transition publishing, metrics and visualization.
package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/giantswarm/microerror"

	"github.com/comalice/reactiontask/internal/primitives"
)

// DefaultVisualizer renders a transition table.
type DefaultVisualizer struct{}

// Edge represents a transition edge.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	// Auto marks transitions the engine applies on its own after an entry action.
	Auto bool `json:"auto,omitempty"`
}

// ExportDOT generates Graphviz DOT source for table. initial is drawn as a
// double circle and current is filled.
func (v *DefaultVisualizer) ExportDOT(table *primitives.Table, initial, current primitives.StateID) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph ReactionTask {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, s := range statesOf(table, initial) {
		attrs := ""
		if s == initial {
			attrs += ` shape=doublecircle`
		}
		if s == current {
			attrs += ` style=filled fillcolor=lightgreen`
		}
		buf.WriteString(fmt.Sprintf("  %q [label=%q%s];\n", s.String(), s.String(), attrs))
	}

	for _, edge := range collectEdges(table) {
		style := ""
		if edge.Auto {
			style = ` style=dashed`
		}
		buf.WriteString(fmt.Sprintf("  %q -> %q [label=%q%s];\n", edge.From, edge.To, edge.Label, style))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the edges of table to JSON.
func (v *DefaultVisualizer) ExportJSON(table *primitives.Table) ([]byte, error) {
	b, err := json.MarshalIndent(collectEdges(table), "", "  ")
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return b, nil
}

// collectEdges collects all transitions in registration order.
func collectEdges(table *primitives.Table) []Edge {
	var edges []Edge
	for _, tr := range table.Transitions() {
		edges = append(edges, Edge{
			From:  tr.From.String(),
			To:    tr.To.String(),
			Label: tr.Event.String(),
			Auto:  tr.Event == primitives.SignalSent || tr.Event == primitives.ResponseProcessed,
		})
	}
	return edges
}

// statesOf lists initial followed by every state the table mentions, in
// first-seen order.
func statesOf(table *primitives.Table, initial primitives.StateID) []primitives.StateID {
	seen := map[primitives.StateID]bool{initial: true}
	states := []primitives.StateID{initial}
	for _, tr := range table.Transitions() {
		for _, s := range []primitives.StateID{tr.From, tr.To} {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}
	return states
}
