package reactiontask_test

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/comalice/reactiontask"
	"github.com/comalice/reactiontask/testutil"
)

func newSession(t *testing.T) (*reactiontask.Session, *testutil.RecordingHost, *testutil.ManualClock) {
	t.Helper()

	host := testutil.NewRecordingHost()
	clock := testutil.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	s, err := reactiontask.New(host,
		reactiontask.WithSignalInterval(time.Hour, time.Hour),
		reactiontask.WithResponseTimeout(5*time.Second),
		reactiontask.WithClock(clock.Now),
		reactiontask.WithRand(rand.New(rand.NewPCG(3, 4))),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, host, clock
}

// cycle runs one stimulus: wait, signal, then respond after reaction.
func cycle(t *testing.T, s *reactiontask.Session, clock *testutil.ManualClock, wait, reaction time.Duration) {
	t.Helper()
	clock.Advance(wait)
	if err := s.ProcessEvent(reactiontask.NewEvent(reactiontask.SignalTimeElapsed)); err != nil {
		t.Fatal(err)
	}
	clock.Advance(reaction)
	if err := s.RespondToStimulus(""); err != nil {
		t.Fatal(err)
	}
}

func TestSession_ReceivedCycle(t *testing.T) {
	s, host, clock := newSession(t)

	if err := s.StartMeasurement(); err != nil {
		t.Fatal(err)
	}
	cycle(t, s, clock, 10*time.Second, 350*time.Millisecond)

	if s.State() != reactiontask.Idle {
		t.Errorf("state = %s, want Idle", s.State())
	}
	if got := s.ExportReactionData(); got != "[[0,[10350,350]]]" {
		t.Errorf("ExportReactionData() = %s", got)
	}
	if host.Signals() != 1 || host.Stops() != 1 {
		t.Errorf("signals=%d stops=%d, want 1/1", host.Signals(), host.Stops())
	}
}

func TestSession_TimeoutCycle(t *testing.T) {
	s, _, clock := newSession(t)

	s.StartMeasurement()
	clock.Advance(8 * time.Second)
	s.ProcessEvent(reactiontask.NewEvent(reactiontask.SignalTimeElapsed))
	clock.Advance(5 * time.Second)
	s.ProcessEvent(reactiontask.NewEvent(reactiontask.ResponseTimeout))

	ds := s.Dataset()
	if len(ds.Reactions) != 1 || len(ds.Reactions[0]) != 1 {
		t.Fatalf("got %+v, want one entry", ds.Reactions)
	}
	if r := ds.Reactions[0][0]; r.ReactionMs != 5000 || !r.TimedOut {
		t.Errorf("got %+v, want timeout of 5000ms", r)
	}
	if s.State() != reactiontask.Idle {
		t.Errorf("state = %s, want Idle", s.State())
	}
}

func TestSession_SubFloorReactionRecordedAsTimeout(t *testing.T) {
	s, _, clock := newSession(t)

	s.StartMeasurement()
	cycle(t, s, clock, time.Second, 50*time.Millisecond)

	if got := s.Dataset().Reactions[0][0].ReactionMs; got != 5000 {
		t.Errorf("ReactionMs = %d, want 5000", got)
	}
}

func TestSession_StopClearsEverything(t *testing.T) {
	s, _, clock := newSession(t)

	s.StartMeasurement()
	cycle(t, s, clock, time.Second, 400*time.Millisecond)
	s.AddEventLog("note")

	if err := s.StopMeasurement(); err != nil {
		t.Fatal(err)
	}
	if s.State() != reactiontask.WaitForStart {
		t.Errorf("state = %s, want WaitForStart", s.State())
	}
	if s.ExportReactionData() != "[]" || s.ExportEventsData() != "[]" {
		t.Errorf("data survived stop: %s %s", s.ExportReactionData(), s.ExportEventsData())
	}
}

func TestSession_MilestoneExport(t *testing.T) {
	s, _, clock := newSession(t)

	s.StartMeasurement()
	cycle(t, s, clock, time.Second, 300*time.Millisecond)
	s.AddEventLog("first")
	cycle(t, s, clock, time.Second, 300*time.Millisecond)
	s.AddMilestone()
	s.AddEventLog("second")
	cycle(t, s, clock, time.Second, 300*time.Millisecond)

	text := s.ExportReactionData()
	var groups [][]json.RawMessage
	if err := json.Unmarshal([]byte(text), &groups); err != nil {
		t.Fatalf("export not well formed: %v\n%s", err, text)
	}
	if len(groups) != 2 || len(groups[0]) != 3 || len(groups[1]) != 2 {
		t.Errorf("got %s, want groups of 2 and 1 entries", text)
	}
	if got, want := text, "[[0,[1300,300],[2600,300]],[1,[3900,300]]]"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	if got, want := s.ExportEventsData(), `[[0,[1300,"first"]],[1,[2600,"second"]]]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSession_RespondWithoutStimulusIsNoop(t *testing.T) {
	s, _, _ := newSession(t)
	s.StartMeasurement()

	before := s.Snapshot()
	if err := s.RespondToStimulus("early"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(before, s.Snapshot()); diff != "" {
		t.Errorf("snapshot changed (-before +after):\n%s", diff)
	}
	if s.ExportReactionData() != "[]" {
		t.Errorf("reaction recorded: %s", s.ExportReactionData())
	}
}

func TestSession_ExportData(t *testing.T) {
	s, _, clock := newSession(t)
	s.StartMeasurement()
	clock.Advance(time.Second)
	s.ProcessEvent(reactiontask.NewEvent(reactiontask.SignalTimeElapsed))
	clock.Advance(200 * time.Millisecond)
	s.RespondToStimulus("right")

	b, err := s.ExportData(reactiontask.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	var ds reactiontask.Dataset
	if err := yaml.Unmarshal(b, &ds); err != nil {
		t.Fatal(err)
	}
	want := [][]reactiontask.Reaction{{{ElapsedMs: 1200, ReactionMs: 200, Tag: "right"}}}
	if diff := cmp.Diff(want, ds.Reactions); diff != "" {
		t.Errorf("yaml reactions mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.ExportData(reactiontask.FormatText); !reactiontask.IsUnknownFormat(err) {
		t.Errorf("got %v, want unknownFormatError", err)
	}
}

func TestSession_StartRequiresCallbacks(t *testing.T) {
	var lines []string
	s, err := reactiontask.New(reactiontask.HostFuncs{
		Signal: func() {},
		Debug:  func(l string) { lines = append(lines, l) },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.StartMeasurement(); !reactiontask.IsCallbackNotConfigured(err) {
		t.Fatalf("got %v, want callbackNotConfiguredError", err)
	}
	if s.State() != reactiontask.WaitForStart {
		t.Errorf("state = %s, want WaitForStart", s.State())
	}
	if len(lines) != 0 {
		t.Errorf("rejected start produced debug lines: %v", lines)
	}
}

func TestSession_Graph(t *testing.T) {
	s, _, _ := newSession(t)
	s.StartMeasurement()

	dot := s.Graph()
	if !strings.Contains(dot, `"Idle" [label="Idle" style=filled fillcolor=lightgreen];`) {
		t.Errorf("current state not highlighted:\n%s", dot)
	}
}

func TestSession_GraphJSON(t *testing.T) {
	s, _, _ := newSession(t)

	data, err := s.GraphJSON()
	if err != nil {
		t.Fatalf("GraphJSON: %v", err)
	}
	var edges []struct {
		From  string `json:"from"`
		To    string `json:"to"`
		Label string `json:"label"`
		Auto  bool   `json:"auto"`
	}
	if err := json.Unmarshal(data, &edges); err != nil {
		t.Fatal(err)
	}

	var auto []string
	for _, e := range edges {
		if e.Auto {
			auto = append(auto, e.From+"->"+e.To)
		}
	}
	want := []string{"SendSignal->WaitResponse", "ProcessResponse->Idle"}
	if diff := cmp.Diff(want, auto); diff != "" {
		t.Errorf("auto edges mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_Closed(t *testing.T) {
	s, _, _ := newSession(t)
	s.Close()

	if err := s.StartMeasurement(); !reactiontask.IsClosed(err) {
		t.Errorf("got %v, want closedError", err)
	}
	if err := s.AddMilestone(); !reactiontask.IsClosed(err) {
		t.Errorf("AddMilestone: got %v, want closedError", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := reactiontask.New(testutil.NewRecordingHost(), reactiontask.WithSignalInterval(25*time.Second, 7*time.Second))
	if !reactiontask.IsInvalidConfig(err) {
		t.Errorf("got %v, want invalidConfigError", err)
	}
}
