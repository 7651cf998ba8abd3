package reactiontask

import (
	"github.com/giantswarm/microerror"

	"github.com/comalice/reactiontask/internal/core"
	"github.com/comalice/reactiontask/internal/primitives"
	"github.com/comalice/reactiontask/internal/production"
)

type (
	Host             = core.Host
	HostFuncs        = core.HostFuncs
	Option           = core.Option
	Publisher        = core.Publisher
	TransitionRecord = core.TransitionRecord
	Snapshot         = core.Snapshot

	State    = primitives.StateID
	EventID  = primitives.EventID
	Event    = primitives.Event
	Reaction = primitives.Reaction
	LogEvent = primitives.LogEvent
	Dataset  = primitives.Dataset

	Format = production.Format
)

const (
	WaitForStart    = primitives.WaitForStart
	Idle            = primitives.Idle
	SendSignal      = primitives.SendSignal
	WaitResponse    = primitives.WaitResponse
	ProcessResponse = primitives.ProcessResponse

	StartMeasure      = primitives.StartMeasure
	SignalTimeElapsed = primitives.SignalTimeElapsed
	SignalSent        = primitives.SignalSent
	ResponseReceived  = primitives.ResponseReceived
	ResponseTimeout   = primitives.ResponseTimeout
	ResponseProcessed = primitives.ResponseProcessed

	FormatText = production.FormatText
	FormatJSON = production.FormatJSON
	FormatYAML = production.FormatYAML

	DefaultMinSignal       = core.DefaultMinSignal
	DefaultMaxSignal       = core.DefaultMaxSignal
	DefaultResponseTimeout = core.DefaultResponseTimeout
	DefaultReactionFloor   = core.DefaultReactionFloor
)

var (
	WithSignalInterval  = core.WithSignalInterval
	WithResponseTimeout = core.WithResponseTimeout
	WithReactionFloor   = core.WithReactionFloor
	WithClock           = core.WithClock
	WithRand            = core.WithRand
	WithLogger          = core.WithLogger
	WithPublisher       = core.WithPublisher

	NewEvent       = primitives.NewEvent
	NewTaggedEvent = primitives.NewTaggedEvent
	ParseFormat    = production.ParseFormat

	IsInvalidConfig         = core.IsInvalidConfig
	IsCallbackNotConfigured = core.IsCallbackNotConfigured
	IsClosed                = core.IsClosed
	IsUnknownFormat         = production.IsUnknownFormat
)

// Session is one measurement session bound to a host.
type Session struct {
	machine *core.Machine
	host    Host
	vis     production.DefaultVisualizer
}

// New creates a Session in WaitForStart.
func New(host Host, opts ...Option) (*Session, error) {
	m, err := core.NewMachine(host, opts...)
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return &Session{machine: m, host: host}, nil
}

// StartMeasurement discards any previous data and starts a new measurement.
// With HostFuncs, missing signal callbacks are reported before anything
// changes.
func (s *Session) StartMeasurement() error {
	if c, ok := s.host.(interface{ Configured() error }); ok {
		if err := c.Configured(); err != nil {
			return microerror.Mask(err)
		}
	}
	return microerror.Mask(s.machine.Start())
}

// StopMeasurement cancels both timers, clears the data and returns to
// WaitForStart.
func (s *Session) StopMeasurement() error {
	return microerror.Mask(s.machine.Reset())
}

// RespondToStimulus reports a response. It is ignored unless a stimulus is
// pending; tag is stored on the recorded sample.
func (s *Session) RespondToStimulus(tag string) error {
	return microerror.Mask(s.machine.Respond(tag))
}

// ProcessEvent dispatches evt through the transition table.
func (s *Session) ProcessEvent(evt Event) error {
	return microerror.Mask(s.machine.ProcessEvent(evt))
}

// AddMilestone starts a new group in both data streams.
func (s *Session) AddMilestone() error {
	return microerror.Mask(s.machine.AddMilestone())
}

// AddEventLog records name at the current elapsed time.
func (s *Session) AddEventLog(name string) error {
	return microerror.Mask(s.machine.AddLogEvent(name))
}

// ExportReactionData renders the reaction stream as nested arrays.
func (s *Session) ExportReactionData() string {
	return production.ReactionsText(s.machine.Dataset().Reactions)
}

// ExportEventsData renders the event stream as nested arrays.
func (s *Session) ExportEventsData() string {
	return production.EventsText(s.machine.Dataset().Events)
}

// ExportData encodes both streams as JSON or YAML.
func (s *Session) ExportData(f Format) ([]byte, error) {
	b, err := production.MarshalDataset(s.machine.Dataset(), f)
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return b, nil
}

// Dataset returns a detached copy of both streams.
func (s *Session) Dataset() Dataset {
	return s.machine.Dataset()
}

func (s *Session) State() State {
	return s.machine.State()
}

func (s *Session) Snapshot() Snapshot {
	return s.machine.Snapshot()
}

// Graph renders the transition table as Graphviz DOT with the current state
// highlighted.
func (s *Session) Graph() string {
	snap := s.machine.Snapshot()
	return s.vis.ExportDOT(s.machine.Table(), snap.Initial, snap.State)
}

// GraphJSON lists the edges of the transition table as JSON.
func (s *Session) GraphJSON() ([]byte, error) {
	b, err := s.vis.ExportJSON(s.machine.Table())
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return b, nil
}

// Close stops both timers and waits for running timer callbacks. The
// session rejects further operations.
func (s *Session) Close() error {
	return microerror.Mask(s.machine.Close())
}
