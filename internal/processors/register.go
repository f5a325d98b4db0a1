package processors

import (
	"log/slog"

	"github.com/shaiso/eventflow/internal/runtime"
)

// Register adds every body this package defines to reg, under the exact
// names RegisterWritingFlow declares in internal/dag/writing.go. Called
// once at worker startup; cmd/eventflow-worker then cross-checks
// reg.Names() against the DAG registry's processor list so an unwired
// name fails loudly before the first dispatch rather than at runtime.
func Register(reg *runtime.Registry, logger *slog.Logger) {
	reg.Register("InterviewPrepGrammar", NewInterviewPrepGrammar(logger))
	reg.Register("Coherence", NewCoherence(logger))
	reg.Register("WritingFinalScore", NewWritingFinalScore(logger))
	reg.Register("WritingSaver", NewWritingSaver(logger))
	reg.Register("AssessmentEvaluatorProcessor", NewAssessmentEvaluatorProcessor(logger))
	reg.Register("AbortHandler", NewAbortHandler(logger))
}
