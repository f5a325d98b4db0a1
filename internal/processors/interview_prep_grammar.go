package processors

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

// InterviewPrepGrammar is a root processor: it scores the grammar of the
// submission text carried in root_arguments["text"]. The scoring itself
// is a stub — a handful of naive heuristics — since the orchestrator only
// ever depends on the {score, issues} result shape, never on scoring
// quality.
type InterviewPrepGrammar struct {
	logger *slog.Logger
}

// NewInterviewPrepGrammar creates the grammar-scoring processor.
func NewInterviewPrepGrammar(logger *slog.Logger) *InterviewPrepGrammar {
	return &InterviewPrepGrammar{logger: logger}
}

// Execute runs the grammar heuristic and returns a score in [0, 1] plus a
// list of flagged issues.
func (p *InterviewPrepGrammar) Execute(_ context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "InterviewPrepGrammar")

	text, _ := in.RootArguments["text"].(string)
	if strings.TrimSpace(text) == "" {
		log.Warn("no text in root_arguments, scoring empty submission")
		return domain.Result(map[string]any{
			"score":  0.0,
			"issues": []string{"empty submission"},
		}), nil
	}

	var issues []string
	if strings.Contains(text, "  ") {
		issues = append(issues, "double space")
	}
	if !strings.HasSuffix(strings.TrimSpace(text), ".") &&
		!strings.HasSuffix(strings.TrimSpace(text), "!") &&
		!strings.HasSuffix(strings.TrimSpace(text), "?") {
		issues = append(issues, "missing terminal punctuation")
	}

	score := 1.0 - 0.15*float64(len(issues))
	if score < 0 {
		score = 0
	}

	log.Info("grammar scored", "score", score, "issue_count", len(issues))
	return domain.Result(map[string]any{
		"score":  score,
		"issues": issues,
	}), nil
}
