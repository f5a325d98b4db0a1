package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shaiso/eventflow/internal/dag"
	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
)

// RecomputeFlowStatus re-reads every non-termination ProcessorState row
// for a flow and, if the flow is still STARTED and all of them are now in
// the completion set, transitions the Flow to COMPLETED. It is called
// unconditionally after every processor completion (Result or
// ResultWithError) rather than only on some of them, replacing the
// original system's save-hook that re-checked completion on every write —
// see SPEC_FULL.md §1.S.1 for why calling this on every write is harmless.
//
// The check is driven entirely by a fresh read under a row lock, never by
// an in-memory counter, so two concurrent completions racing to finish
// the last processor both observe a consistent count.
func (o *Orchestrator) RecomputeFlowStatus(ctx context.Context, flowID uuid.UUID, d *dag.FlowDAG) (*domain.EventFlow, error) {
	var flow *domain.EventFlow
	err := repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		f, err := o.flows.GetForUpdate(ctx, tx, flowID)
		if err != nil {
			return err
		}
		flow = f

		if f.IsTerminal() {
			return nil
		}

		remaining, err := o.states.CountNotInCompletionSet(ctx, tx, flowID, d.TerminationProcessors())
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}

		f.MarkTerminal(domain.FlowStatusCompleted)
		return o.flows.UpdateStatus(ctx, tx, f)
	})
	if err != nil {
		return nil, fmt.Errorf("recompute flow status %s: %w", flowID, err)
	}
	return flow, nil
}
