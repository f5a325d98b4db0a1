package processors

import (
	"context"
	"log/slog"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

// assessmentPassThreshold is the final_score below which the evaluator
// flags the submission instead of passing it.
const assessmentPassThreshold = 0.6

// AssessmentEvaluatorProcessor is the last node of the "writing" flow: it
// reads WritingSaver's forwarded final_score and renders a pass/flag
// verdict.
type AssessmentEvaluatorProcessor struct {
	logger *slog.Logger
}

// NewAssessmentEvaluatorProcessor creates the verdict processor.
func NewAssessmentEvaluatorProcessor(logger *slog.Logger) *AssessmentEvaluatorProcessor {
	return &AssessmentEvaluatorProcessor{logger: logger}
}

// Execute renders the final pass/flag verdict.
func (p *AssessmentEvaluatorProcessor) Execute(_ context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "AssessmentEvaluatorProcessor")

	finalScore := floatResult(in.Values, "WritingSaver", "final_score")
	savedID, _ := savedIDFrom(in.Values)

	verdict := "flagged"
	if finalScore >= assessmentPassThreshold {
		verdict = "passed"
	}

	log.Info("assessment evaluated", "final_score", finalScore, "verdict", verdict)
	return domain.Result(map[string]any{
		"verdict":     verdict,
		"final_score": finalScore,
		"saved_id":    savedID,
	}), nil
}

func savedIDFrom(values map[string]any) (string, bool) {
	saver, ok := values["WritingSaver"].(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := saver["saved_id"].(string)
	return id, ok
}
