package primitives

import "testing"

func TestNewEvent(t *testing.T) {
	e := NewEvent(ResponseTimeout)
	if e.ID != ResponseTimeout {
		t.Errorf("got ID=%v want ResponseTimeout", e.ID)
	}
	if e.Tag != "" {
		t.Errorf("got Tag=%q want empty", e.Tag)
	}

	tagged := NewTaggedEvent(ResponseReceived, "lane-2")
	if tagged.Tag != "lane-2" {
		t.Errorf("got Tag=%q want lane-2", tagged.Tag)
	}
}

func TestEventImmutability(t *testing.T) {
	e := NewTaggedEvent(ResponseReceived, "left")
	eCopy := e
	eCopy.ID = StartMeasure
	eCopy.Tag = "changed"
	if e.ID != ResponseReceived || e.Tag != "left" {
		t.Error("original event was mutated")
	}
}

func TestEventAndStateNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{StartMeasure.String(), "StartMeasure"},
		{SignalTimeElapsed.String(), "SignalTimeElapsed"},
		{SignalSent.String(), "SignalSent"},
		{ResponseReceived.String(), "ResponseReceived"},
		{ResponseTimeout.String(), "ResponseTimeout"},
		{ResponseProcessed.String(), "ResponseProcessed"},
		{EventID(99).String(), "Unrecognized Event"},
		{WaitForStart.String(), "WaitForStart"},
		{Idle.String(), "Idle"},
		{SendSignal.String(), "SendSignal"},
		{WaitResponse.String(), "WaitResponse"},
		{ProcessResponse.String(), "ProcessResponse"},
		{StateID(-1).String(), "Unrecognized State"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q want %q", tt.got, tt.want)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range States {
		text, _ := s.MarshalText()
		var got StateID
		if err := got.UnmarshalText(text); err != nil || got != s {
			t.Errorf("state %s: got %v, %v", s, got, err)
		}
	}
	for _, e := range Events {
		text, _ := e.MarshalText()
		var got EventID
		if err := got.UnmarshalText(text); err != nil || got != e {
			t.Errorf("event %s: got %v, %v", e, got, err)
		}
	}

	var s StateID
	if err := s.UnmarshalText([]byte("Sleeping")); err == nil {
		t.Error("unknown state name accepted")
	}
	var e EventID
	if err := e.UnmarshalText([]byte("Unrecognized Event")); err == nil {
		t.Error("unknown event name accepted")
	}
}
