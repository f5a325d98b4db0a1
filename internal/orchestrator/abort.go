package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
)

// AbortFlow transitions a flow to its terminal status for cause (MANUAL ->
// ABORTED, PROCESSOR_ERROR -> ERROR), flips every still-PENDING processor
// to ABORTED, and creates + enqueues the flow-type's termination
// (compensating) processors. Calling AbortFlow twice leaves the same set
// of termination rows: the second call finds the flow already terminal
// and the termination rows already created, so it is a no-op beyond that
// point (termination dispatch idempotence, §8).
func (o *Orchestrator) AbortFlow(ctx context.Context, flowID uuid.UUID, cause domain.TerminationCause) error {
	_, d, err := o.loadFlowAndDAG(ctx, flowID)
	if err != nil {
		return err
	}
	terminationNames := d.TerminationProcessors()

	var toEnqueue []*domain.ProcessorState
	var rootArgs map[string]any
	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		flow, err := o.flows.GetForUpdate(ctx, tx, flowID)
		if err != nil {
			return err
		}
		rootArgs = flow.RootArguments

		if !flow.IsTerminal() {
			flow.MarkTerminal(cause.FlowStatusFor())
			if err := o.flows.UpdateStatus(ctx, tx, flow); err != nil {
				return err
			}
			if err := o.states.AbortPending(ctx, tx, flowID, terminationNames); err != nil {
				return err
			}
		}

		for _, name := range terminationNames {
			existing, err := o.states.GetForUpdate(ctx, tx, flowID, name)
			if err != nil {
				if !errors.Is(err, repo.ErrNotFound) {
					return err
				}
				existing = nil
			}
			if existing != nil {
				continue
			}
			toEnqueue = append(toEnqueue, domain.NewProcessorState(flowID, name))
		}
		if len(toEnqueue) > 0 {
			return o.states.CreateBulk(ctx, tx, toEnqueue)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("abort flow %s: %w", flowID, err)
	}

	if len(toEnqueue) == 0 {
		return nil
	}

	o.logger.Info("flow aborted", "flow_id", flowID, "cause", cause, "termination_processors", terminationNames)

	g, gctx := errgroup.WithContext(ctx)
	for _, state := range toEnqueue {
		name := state.ProcessorName
		g.Go(func() error {
			return o.publisher.Enqueue(gctx, name, flowID, rootArgs, map[string]any{})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("enqueue termination processors for flow %s: %w", flowID, err)
	}
	return nil
}
