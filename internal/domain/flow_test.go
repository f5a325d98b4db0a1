package domain

import "testing"

func TestNewEventFlow_DefaultsNilRootArguments(t *testing.T) {
	f := NewEventFlow("writing", nil, "cli")
	if f.RootArguments == nil {
		t.Fatal("root arguments should default to an empty map, not nil")
	}
	if f.Status != FlowStatusStarted {
		t.Errorf("new flow status = %s, want STARTED", f.Status)
	}
	if f.EndTime != nil {
		t.Error("new flow should have no end time")
	}
}

func TestEventFlow_MarkTerminal(t *testing.T) {
	f := NewEventFlow("writing", nil, "cli")
	f.MarkTerminal(FlowStatusCompleted)

	if f.Status != FlowStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", f.Status)
	}
	if f.EndTime == nil {
		t.Fatal("end time should be set")
	}
	if f.RunDurationMs == nil {
		t.Fatal("run duration should be set")
	}
	if !f.IsTerminal() {
		t.Error("flow should report terminal after MarkTerminal")
	}
}

func TestEventFlow_MarkRestarted(t *testing.T) {
	f := NewEventFlow("writing", nil, "cli")
	f.MarkTerminal(FlowStatusError)
	f.MarkRestarted()

	if f.Status != FlowStatusStarted {
		t.Errorf("status = %s, want STARTED after restart", f.Status)
	}
	if f.EndTime != nil {
		t.Error("end time should be cleared after restart")
	}
	if f.RunDurationMs != nil {
		t.Error("run duration should be cleared after restart")
	}
}
