package processors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

func TestAbortHandler_RecordsCompensation(t *testing.T) {
	p := NewAbortHandler(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"submission_id": "sub-123"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("kind = %s, want RESULT", outcome.Kind)
	}
	if outcome.Result["compensated"] != true {
		t.Error("compensated should be true")
	}
	if outcome.Result["submission_id"] != "sub-123" {
		t.Errorf("submission_id = %v, want sub-123", outcome.Result["submission_id"])
	}
}
