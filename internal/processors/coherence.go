package processors

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

// coherenceThinkTime is how long Coherence pretends to think before
// scoring. Deliberately slow, the way steps/delay.go's DelayExecutor
// slept for a configured duration — this gives the retry-loop scenario
// (§8.4) something real to exercise under a worker timeout.
const coherenceThinkTime = 2 * time.Second

// Coherence is a root processor that scores narrative coherence. A flow
// may carry root_arguments["coherence_fail_attempts"] (an integer) to
// simulate a flaky upstream dependency: the processor returns a
// RetriableError on every attempt up to and including that count, then
// succeeds. Omitted or zero means it succeeds on the first attempt.
type Coherence struct {
	logger *slog.Logger
}

// NewCoherence creates the coherence-scoring processor.
func NewCoherence(logger *slog.Logger) *Coherence {
	return &Coherence{logger: logger}
}

// Execute sleeps briefly to simulate scoring work, then either returns a
// retriable error (while the simulated flakiness budget isn't exhausted)
// or a coherence score.
func (p *Coherence) Execute(ctx context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "Coherence", "attempt", in.Attempt)

	select {
	case <-time.After(coherenceThinkTime):
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}

	failAttempts := intArg(in.RootArguments, "coherence_fail_attempts")
	if in.Attempt <= failAttempts {
		log.Warn("simulated transient coherence scoring failure", "fail_attempts_budget", failAttempts)
		return domain.RetriableError(fmt.Sprintf("coherence scoring backend timed out (attempt %d)", in.Attempt)), nil
	}

	log.Info("coherence scored")
	return domain.Result(map[string]any{
		"score": 0.82,
	}), nil
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
