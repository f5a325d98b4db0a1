package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

const writingSaverTimeout = 10 * time.Second

// WritingSaver persists the assembled writing evaluation to an external
// sink, the same "call out, report status_code/body" shape as
// steps/http.go's HTTPExecutor. root_arguments["sink_url"] is optional:
// when present the aggregate is POSTed there; when absent (the common
// case for the bundled "writing" flow, which has no real sink to call)
// the save is simulated and logged, still returning a saved_id so
// downstream processors have something to reference.
type WritingSaver struct {
	logger *slog.Logger
	client *http.Client
}

// NewWritingSaver creates the persistence processor.
func NewWritingSaver(logger *slog.Logger) *WritingSaver {
	return &WritingSaver{logger: logger, client: &http.Client{Timeout: writingSaverTimeout}}
}

// Execute persists the fan-in result, either by POSTing it to the
// configured sink or by simulating the write.
func (p *WritingSaver) Execute(ctx context.Context, in runtime.Input) (domain.Outcome, error) {
	log := p.logger.With("flow_id", in.FlowID, "processor", "WritingSaver")

	savedID := uuid.New().String()
	payload := map[string]any{
		"saved_id":    savedID,
		"grammar":     in.Values["InterviewPrepGrammar"],
		"coherence":   in.Values["Coherence"],
		"final_score": in.Values["WritingFinalScore"],
	}

	finalScore := floatResult(in.Values, "WritingFinalScore", "final_score")

	sinkURL, _ := in.RootArguments["sink_url"].(string)
	if sinkURL == "" {
		log.Info("no sink_url configured, simulating save", "saved_id", savedID)
		return domain.Result(map[string]any{
			"saved_id":    savedID,
			"sink":        "simulated",
			"final_score": finalScore,
		}), nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.CriticalError(fmt.Sprintf("marshal save payload: %v", err)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, writingSaverTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sinkURL, bytes.NewReader(body))
	if err != nil {
		return domain.CriticalError(fmt.Sprintf("build save request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Warn("save request failed, will retry", "error", err)
		return domain.RetriableError(fmt.Sprintf("save request: %v", err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		log.Warn("sink returned server error, will retry", "status_code", resp.StatusCode)
		return domain.RetriableError(fmt.Sprintf("sink returned status %d", resp.StatusCode)), nil
	}
	if resp.StatusCode >= 400 {
		return domain.CriticalError(fmt.Sprintf("sink rejected save with status %d", resp.StatusCode)), nil
	}

	log.Info("saved to sink", "saved_id", savedID, "status_code", resp.StatusCode)
	return domain.Result(map[string]any{
		"saved_id":    savedID,
		"sink":        sinkURL,
		"status_code": resp.StatusCode,
		"final_score": finalScore,
	}), nil
}
