package processors

import (
	"context"
	"log/slog"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

// WritingFinalScore fans in InterviewPrepGrammar and Coherence: a
// pass-through aggregation in the spirit of steps/transform.go's
// input-merging shape, just averaging the two upstream scores instead of
// echoing a template-rendered payload.
type WritingFinalScore struct {
	logger *slog.Logger
}

// NewWritingFinalScore creates the fan-in aggregation processor.
func NewWritingFinalScore(logger *slog.Logger) *WritingFinalScore {
	return &WritingFinalScore{logger: logger}
}

// Execute averages the grammar and coherence scores carried in in.Values.
func (p *WritingFinalScore) Execute(_ context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "WritingFinalScore")

	grammar := floatResult(in.Values, "InterviewPrepGrammar", "score")
	coherence := floatResult(in.Values, "Coherence", "score")
	final := (grammar + coherence) / 2

	log.Info("final score aggregated", "grammar", grammar, "coherence", coherence, "final", final)
	return domain.Result(map[string]any{
		"final_score":     final,
		"grammar_score":   grammar,
		"coherence_score": coherence,
	}), nil
}

func floatResult(values map[string]any, processor, field string) float64 {
	result, ok := values[processor].(map[string]any)
	if !ok {
		return 0
	}
	switch v := result[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
