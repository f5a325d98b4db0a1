package processors

import (
	"context"
	"log/slog"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

// AbortHandler is the "writing" flow's sole termination processor: it
// runs once, only when AbortFlow creates it, and performs whatever
// compensating action an aborted evaluation needs (here: recording that
// the submission was never scored, so nothing downstream mistakes silence
// for a pending evaluation).
type AbortHandler struct {
	logger *slog.Logger
}

// NewAbortHandler creates the compensating termination processor.
func NewAbortHandler(logger *slog.Logger) *AbortHandler {
	return &AbortHandler{logger: logger}
}

// Execute records the compensating action. AbortHandler has no
// predecessors — in.Values is always empty — but does receive
// root_arguments, per §4.5.
func (p *AbortHandler) Execute(_ context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "AbortHandler")

	submissionID, _ := in.RootArguments["submission_id"].(string)
	log.Warn("flow aborted, recording compensating action", "submission_id", submissionID)

	return domain.Result(map[string]any{
		"compensated":   true,
		"submission_id": submissionID,
	}), nil
}
