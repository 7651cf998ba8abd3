// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/comalice/reactiontask/internal/core"
	"github.com/comalice/reactiontask/internal/primitives"
	"github.com/comalice/reactiontask/testutil"
)

// NewBenchMachine creates a machine whose signal timer never fires during a
// benchmark and whose clock advances only when told.
func NewBenchMachine(b *testing.B, opts ...core.Option) (*core.Machine, *testutil.ManualClock) {
	b.Helper()

	clock := testutil.NewManualClock(time.Unix(0, 0))
	base := []core.Option{
		core.WithSignalInterval(time.Hour, time.Hour),
		core.WithClock(clock.Now),
		core.WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	m, err := core.NewMachine(core.HostFuncs{Signal: func() {}, Stop: func() {}}, append(base, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { m.Close() })
	return m, clock
}

// GenDataset creates a dataset of groups x perGroup entries in each stream.
func GenDataset(groups, perGroup int) primitives.Dataset {
	var ds primitives.Dataset
	var elapsed int64
	for g := 0; g < groups; g++ {
		reactions := make([]primitives.Reaction, 0, perGroup)
		events := make([]primitives.LogEvent, 0, perGroup)
		for i := 0; i < perGroup; i++ {
			elapsed += 9000
			reactions = append(reactions, primitives.Reaction{ElapsedMs: elapsed, ReactionMs: int64(200 + i%300), Tag: "left"})
			events = append(events, primitives.LogEvent{ElapsedMs: elapsed, Name: "lap"})
		}
		ds.Reactions = append(ds.Reactions, reactions)
		ds.Events = append(ds.Events, events)
	}
	return ds
}
