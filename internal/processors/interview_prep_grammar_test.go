package processors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

func TestInterviewPrepGrammar_CleanText(t *testing.T) {
	p := NewInterviewPrepGrammar(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"text": "This is a clean sentence."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("kind = %s, want RESULT", outcome.Kind)
	}
	if outcome.Result["score"] != 1.0 {
		t.Errorf("score = %v, want 1.0 for clean text", outcome.Result["score"])
	}
}

func TestInterviewPrepGrammar_FlagsIssues(t *testing.T) {
	p := NewInterviewPrepGrammar(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"text": "double  space and no terminal punctuation"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	issues, ok := outcome.Result["issues"].([]string)
	if !ok || len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", outcome.Result["issues"])
	}
	if outcome.Result["score"] != 0.7 {
		t.Errorf("score = %v, want 0.7 for two issues", outcome.Result["score"])
	}
}

func TestInterviewPrepGrammar_EmptySubmission(t *testing.T) {
	p := NewInterviewPrepGrammar(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Result["score"] != 0.0 {
		t.Errorf("score = %v, want 0.0 for empty submission", outcome.Result["score"])
	}
}
