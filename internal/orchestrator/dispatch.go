package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
)

// MarkInProgress records that a processor's body is actually about to run:
// PENDING or RETRIABLE_ERROR -> IN_PROGRESS, start_time set, attempt
// counted (§3's "PENDING -> IN_PROGRESS when dispatched"). The Processor
// Runtime calls this once per invocation, right after flow hydration and
// before Execute, so every path that ends up running a body — a freshly
// seeded root, a fan-in dependent, a redelivered RETRIABLE_ERROR retry, or
// a processor re-enqueued by Retry/ResetAndRestart — goes through the same
// transition, not just the ones dispatchIfReady claims ahead of enqueue.
//
// A row already IN_PROGRESS is left untouched: dispatchIfReady already
// performed this exact transition under its own lock, as part of the
// exactly-once-enqueue claim for a dependent, before this method ever
// runs for that row. Rows in any other status (for example a completed or
// aborted row reached by a redelivered message) are left untouched too.
func (o *Orchestrator) MarkInProgress(ctx context.Context, flowID uuid.UUID, processorName string) error {
	err := repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		state, err := o.states.GetForUpdate(ctx, tx, flowID, processorName)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProcessorNotFound, processorName)
			}
			return err
		}
		if state.Status != domain.ProcessorStatusPending && state.Status != domain.ProcessorStatusRetriableError {
			return nil
		}
		state.MarkDispatched()
		return o.states.Update(ctx, tx, state)
	})
	if err != nil {
		return fmt.Errorf("mark in progress %s/%s: %w", flowID, processorName, err)
	}
	return nil
}
