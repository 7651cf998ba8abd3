package benchmarks

import (
	"testing"

	"github.com/comalice/reactiontask/internal/production"
)

func BenchmarkExport(b *testing.B) {
	ds := GenDataset(10, 100)

	for _, f := range []production.Format{production.FormatText, production.FormatJSON, production.FormatYAML} {
		b.Run(string(f), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := production.MarshalReactions(ds.Reactions, f); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
