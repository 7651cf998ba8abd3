package production

import (
	"context"

	"github.com/giantswarm/microerror"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/reactiontask/internal/core"
	"github.com/comalice/reactiontask/internal/primitives"
)

const (
	namespace = "reactiontask"

	outcomeReceived = "received"
	outcomeTimeout  = "timeout"
	outcomeClamped  = "clamped"
)

type MetricsConfig struct {
	Registerer prometheus.Registerer
}

// Metrics is a core.Publisher that turns transition records into prometheus
// series.
type Metrics struct {
	signals   prometheus.Counter
	resets    prometheus.Counter
	responses *prometheus.CounterVec
	reaction  prometheus.Histogram
	state     *prometheus.GaugeVec
}

func NewMetrics(config MetricsConfig) (*Metrics, error) {
	if config.Registerer == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Registerer must not be empty", config)
	}

	m := &Metrics{
		signals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Stimulus signals emitted.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Forced returns to WaitForStart.",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Recorded reaction samples by outcome.",
		}, []string{"outcome"}),
		reaction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reaction_time_milliseconds",
			Help:      "Recorded reaction times, including timeout substitutes.",
			Buckets:   []float64{100, 150, 200, 250, 300, 400, 500, 750, 1000, 2000, 5000},
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current engine state, 0 otherwise.",
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{m.signals, m.resets, m.responses, m.reaction, m.state} {
		if err := config.Registerer.Register(c); err != nil {
			return nil, microerror.Mask(err)
		}
	}
	m.setState(primitives.WaitForStart)

	return m, nil
}

func (m *Metrics) Publish(_ context.Context, record core.TransitionRecord) error {
	m.setState(record.To)

	if record.Reset {
		m.resets.Inc()
		return nil
	}
	if record.To == primitives.SendSignal {
		m.signals.Inc()
	}
	if s := record.Sample; s != nil {
		m.responses.WithLabelValues(outcome(*s)).Inc()
		m.reaction.Observe(float64(s.ReactionMs))
	}
	return nil
}

func (m *Metrics) setState(current primitives.StateID) {
	for _, s := range primitives.States {
		v := 0.0
		if s == current {
			v = 1
		}
		m.state.WithLabelValues(s.String()).Set(v)
	}
}

func outcome(r primitives.Reaction) string {
	switch {
	case r.TimedOut:
		return outcomeTimeout
	case r.Clamped:
		return outcomeClamped
	default:
		return outcomeReceived
	}
}
