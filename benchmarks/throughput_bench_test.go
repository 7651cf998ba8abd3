// Package benchmarks provides performance benchmarks for concurrent use.
package benchmarks

import (
	"testing"
)

// BenchmarkConcurrentRespond measures lock contention when many goroutines
// respond while the machine is idle.
func BenchmarkConcurrentRespond(b *testing.B) {
	m, _ := NewBenchMachine(b)
	if err := m.Start(); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Respond("")
		}
	})
}

func BenchmarkConcurrentLogEvent(b *testing.B) {
	m, _ := NewBenchMachine(b)
	if err := m.Start(); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if i%100 == 0 {
				m.AddMilestone()
			}
			m.AddLogEvent("tick")
			i++
		}
	})
}
