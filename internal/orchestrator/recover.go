package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
)

// ResetAndRestart rewinds an entire flow: every non-termination processor
// goes back to PENDING (including ones that had COMPLETED), termination
// rows are dropped, the flow returns to STARTED, and the root processors
// are re-enqueued. This is a full do-over, unlike Retry which only rewinds
// the failed subset.
func (o *Orchestrator) ResetAndRestart(ctx context.Context, flowID uuid.UUID) error {
	flow, d, err := o.loadFlowAndDAG(ctx, flowID)
	if err != nil {
		return err
	}
	terminationNames := d.TerminationProcessors()

	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		flow, err := o.flows.GetForUpdate(ctx, tx, flowID)
		if err != nil {
			return err
		}
		flow.MarkRestarted()
		if err := o.flows.UpdateStatus(ctx, tx, flow); err != nil {
			return err
		}
		if err := o.states.DeleteTermination(ctx, tx, flowID, terminationNames); err != nil {
			return err
		}
		return o.states.ResetAll(ctx, tx, flowID, terminationNames)
	})
	if err != nil {
		return fmt.Errorf("reset and restart flow %s: %w", flowID, err)
	}

	o.logger.Info("flow reset and restarted", "flow_id", flowID)
	return o.enqueueNames(ctx, flowID, flow.RootArguments, d.RootProcessors())
}

// Retry rewinds only the failed/incomplete subset of a flow after a fatal
// abort: every ERROR processor must have all its predecessors already in
// the completion set, or Retry fails without changing any state (manual
// intervention required — the DAG can't safely resume past a gap).
// ERROR/ABORTED/COMPLETED_WITH_ERROR/PENDING rows reset to PENDING,
// already-COMPLETED rows are left alone, termination rows are dropped, and
// the previously-ERROR processors are re-enqueued directly; their
// dependents (now PENDING again) are picked up through the normal
// Submit -> dispatch chain once those processors complete again.
func (o *Orchestrator) Retry(ctx context.Context, flowID uuid.UUID) error {
	flow, d, err := o.loadFlowAndDAG(ctx, flowID)
	if err != nil {
		return err
	}

	states, err := o.states.ListByFlow(ctx, flowID)
	if err != nil {
		return fmt.Errorf("retry flow %s: list processor states: %w", flowID, err)
	}

	byName := make(map[string]domain.ProcessorState, len(states))
	for _, s := range states {
		byName[s.ProcessorName] = s
	}

	var errored []string
	erroredInputs := make(map[string]map[string]any)
	for _, s := range states {
		if s.Status != domain.ProcessorStatusError {
			continue
		}
		deps, err := d.DependsOn(s.ProcessorName)
		if err != nil {
			return fmt.Errorf("retry flow %s: %w", flowID, err)
		}
		inputs := make(map[string]any, len(deps))
		for _, dep := range deps {
			predState, ok := byName[dep]
			if !ok || !predState.Status.IsCompletion() {
				return fmt.Errorf("retry flow %s: %w (processor %s depends on incomplete %s)",
					flowID, ErrRetryRequiresManualIntervention, s.ProcessorName, dep)
			}
			inputs[dep] = predState.Result
		}
		errored = append(errored, s.ProcessorName)
		erroredInputs[s.ProcessorName] = inputs
	}

	terminationNames := d.TerminationProcessors()
	resetFrom := []domain.ProcessorStatus{
		domain.ProcessorStatusError,
		domain.ProcessorStatusAborted,
		domain.ProcessorStatusCompletedWithError,
		domain.ProcessorStatusPending,
	}

	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		f, err := o.flows.GetForUpdate(ctx, tx, flowID)
		if err != nil {
			return err
		}
		f.MarkRestarted()
		if err := o.flows.UpdateStatus(ctx, tx, f); err != nil {
			return err
		}
		if err := o.states.DeleteTermination(ctx, tx, flowID, terminationNames); err != nil {
			return err
		}
		return o.states.ResetByStatus(ctx, tx, flowID, resetFrom, terminationNames)
	})
	if err != nil {
		return fmt.Errorf("retry flow %s: %w", flowID, err)
	}

	o.logger.Info("flow retried", "flow_id", flowID, "processors", errored)
	return o.enqueueWithInputs(ctx, flowID, flow.RootArguments, errored, erroredInputs)
}

// enqueueNames re-enqueues a set of processors with empty assembled
// inputs, as plain roots of re-entry rather than fan-in dependents — the
// caller (ResetAndRestart) has already established that they are roots.
func (o *Orchestrator) enqueueNames(ctx context.Context, flowID uuid.UUID, rootArgs map[string]any, names []string) error {
	if len(names) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return o.publisher.Enqueue(gctx, name, flowID, rootArgs, map[string]any{})
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("enqueue %v for flow %s: %w", names, flowID, err)
	}
	return nil
}

// enqueueWithInputs re-enqueues a set of previously-ERROR processors, each
// with its own assembled {predecessor_name -> result} map rather than an
// empty one — unlike a fresh root dispatch, a retried non-root processor's
// predecessors are already complete and its body still expects their
// output (§4.1 input assembly applies on retry exactly as it does on first
// dispatch).
func (o *Orchestrator) enqueueWithInputs(ctx context.Context, flowID uuid.UUID, rootArgs map[string]any, names []string, inputs map[string]map[string]any) error {
	if len(names) == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			return o.publisher.Enqueue(gctx, name, flowID, rootArgs, inputs[name])
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("enqueue %v for flow %s: %w", names, flowID, err)
	}
	return nil
}
