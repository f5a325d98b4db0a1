package processors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/runtime"
)

func TestWritingFinalScore_AveragesPredecessors(t *testing.T) {
	p := NewWritingFinalScore(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		Values: map[string]any{
			"InterviewPrepGrammar": map[string]any{"score": 0.8},
			"Coherence":            map[string]any{"score": 0.6},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Result["final_score"] != 0.7 {
		t.Errorf("final_score = %v, want 0.7", outcome.Result["final_score"])
	}
	if outcome.Result["grammar_score"] != 0.8 {
		t.Errorf("grammar_score = %v, want 0.8", outcome.Result["grammar_score"])
	}
	if outcome.Result["coherence_score"] != 0.6 {
		t.Errorf("coherence_score = %v, want 0.6", outcome.Result["coherence_score"])
	}
}

func TestFloatResult_MissingPredecessorDefaultsToZero(t *testing.T) {
	if got := floatResult(map[string]any{}, "InterviewPrepGrammar", "score"); got != 0 {
		t.Errorf("floatResult on missing predecessor = %v, want 0", got)
	}
}

func TestFloatResult_AcceptsIntField(t *testing.T) {
	values := map[string]any{"X": map[string]any{"score": 1}}
	if got := floatResult(values, "X", "score"); got != 1.0 {
		t.Errorf("floatResult with int field = %v, want 1.0", got)
	}
}
