package processors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/runtime"
)

func TestAssessmentEvaluator_PassesAtOrAboveThreshold(t *testing.T) {
	p := NewAssessmentEvaluatorProcessor(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		Values: map[string]any{
			"WritingSaver": map[string]any{"final_score": 0.6, "saved_id": "abc"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Result["verdict"] != "passed" {
		t.Errorf("verdict = %v, want passed at the threshold", outcome.Result["verdict"])
	}
	if outcome.Result["saved_id"] != "abc" {
		t.Errorf("saved_id not forwarded")
	}
}

func TestAssessmentEvaluator_FlagsBelowThreshold(t *testing.T) {
	p := NewAssessmentEvaluatorProcessor(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		Values: map[string]any{
			"WritingSaver": map[string]any{"final_score": 0.59},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Result["verdict"] != "flagged" {
		t.Errorf("verdict = %v, want flagged below the threshold", outcome.Result["verdict"])
	}
}
