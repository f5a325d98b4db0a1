package domain

import "testing"

func TestFlowStatus_IsTerminal(t *testing.T) {
	cases := map[FlowStatus]bool{
		FlowStatusStarted:   false,
		FlowStatusCompleted: true,
		FlowStatusError:     true,
		FlowStatusAborted:   true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestProcessorStatus_IsCompletion(t *testing.T) {
	cases := map[ProcessorStatus]bool{
		ProcessorStatusPending:           false,
		ProcessorStatusInProgress:        false,
		ProcessorStatusCompleted:         true,
		ProcessorStatusCompletedWithError: true,
		ProcessorStatusError:             false,
		ProcessorStatusRetriableError:    false,
		ProcessorStatusAborted:           false,
	}
	for status, want := range cases {
		if got := status.IsCompletion(); got != want {
			t.Errorf("%s.IsCompletion() = %v, want %v", status, got, want)
		}
	}
}

func TestProcessorStatus_IsTerminal(t *testing.T) {
	cases := map[ProcessorStatus]bool{
		ProcessorStatusPending:            false,
		ProcessorStatusInProgress:         false,
		ProcessorStatusCompleted:          true,
		ProcessorStatusCompletedWithError: true,
		ProcessorStatusError:              true,
		ProcessorStatusRetriableError:     false,
		ProcessorStatusAborted:            true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestTerminationCause_FlowStatusFor(t *testing.T) {
	if got := TerminationCauseManual.FlowStatusFor(); got != FlowStatusAborted {
		t.Errorf("manual cause should map to ABORTED, got %s", got)
	}
	if got := TerminationCauseProcessorError.FlowStatusFor(); got != FlowStatusError {
		t.Errorf("processor error cause should map to ERROR, got %s", got)
	}
}
