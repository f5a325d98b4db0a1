package processors

import (
	"context"
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

func TestCoherence_SucceedsWithoutFlakinessBudget(t *testing.T) {
	p := NewCoherence(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{},
		Attempt:       1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("kind = %s, want RESULT", outcome.Kind)
	}
}

func TestCoherence_RetriesUntilFlakinessBudgetExhausted(t *testing.T) {
	p := NewCoherence(slog.Default())
	args := map[string]any{"coherence_fail_attempts": 2}

	for attempt := 1; attempt <= 2; attempt++ {
		outcome, err := p.Execute(context.Background(), runtime.Input{
			RootArguments: args,
			Attempt:       attempt,
		})
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", attempt, err)
		}
		if outcome.Kind != domain.OutcomeRetriableError {
			t.Fatalf("attempt %d: kind = %s, want RETRIABLE_ERROR", attempt, outcome.Kind)
		}
	}

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: args,
		Attempt:       3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("attempt 3: kind = %s, want RESULT once the budget is exhausted", outcome.Kind)
	}
}

func TestIntArg(t *testing.T) {
	cases := []struct {
		args map[string]any
		want int
	}{
		{map[string]any{"n": 3}, 3},
		{map[string]any{"n": 3.0}, 3},
		{map[string]any{"n": "not a number"}, 0},
		{map[string]any{}, 0},
	}
	for _, c := range cases {
		if got := intArg(c.args, "n"); got != c.want {
			t.Errorf("intArg(%v) = %d, want %d", c.args, got, c.want)
		}
	}
}
