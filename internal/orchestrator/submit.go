package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shaiso/eventflow/internal/dag"
	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/repo"
)

// SubmitResult reports a processor's successful completion. A non-empty
// errorStack makes it a soft (partial) success: COMPLETED_WITH_ERROR
// instead of COMPLETED, but dependents still treat the node as ready.
func (o *Orchestrator) SubmitResult(ctx context.Context, flowID uuid.UUID, processorName string, result map[string]any, errorStack string) error {
	applied, err := o.persistOutcome(ctx, flowID, processorName, func(s *domain.ProcessorState) {
		if errorStack != "" {
			s.MarkCompletedWithError(result, errorStack)
		} else {
			s.MarkCompleted(result)
		}
	})
	if err != nil {
		return fmt.Errorf("submit result for %s/%s: %w", flowID, processorName, err)
	}
	if !applied {
		return nil
	}
	return o.recomputeAndDispatch(ctx, flowID, processorName)
}

// SubmitRetriableError records a transient failure. The node stays
// unfinished; re-enqueueing with backoff is the worker/queue's
// responsibility, not the orchestrator's.
func (o *Orchestrator) SubmitRetriableError(ctx context.Context, flowID uuid.UUID, processorName, stack string) error {
	_, err := o.persistOutcome(ctx, flowID, processorName, func(s *domain.ProcessorState) {
		s.MarkRetriableError(stack)
	})
	if err != nil {
		return fmt.Errorf("submit retriable error for %s/%s: %w", flowID, processorName, err)
	}
	return nil
}

// SubmitError records a fatal failure. When abortFlow is true (the
// CriticalProcessorError path, per §4.2), the flow is aborted with cause
// PROCESSOR_ERROR immediately afterward.
func (o *Orchestrator) SubmitError(ctx context.Context, flowID uuid.UUID, processorName, stack string, abortFlow bool) error {
	_, err := o.persistOutcome(ctx, flowID, processorName, func(s *domain.ProcessorState) {
		s.MarkError(stack)
	})
	if err != nil {
		return fmt.Errorf("submit error for %s/%s: %w", flowID, processorName, err)
	}
	if !abortFlow {
		return nil
	}
	return o.AbortFlow(ctx, flowID, domain.TerminationCauseProcessorError)
}

// persistOutcome locks a processor's own row, ignores the call if the row
// is already in the completion set (Submit is idempotent per §4.1's
// edge-case policy), and otherwise applies mutate and writes the result.
// applied reports whether the row was actually written.
func (o *Orchestrator) persistOutcome(ctx context.Context, flowID uuid.UUID, processorName string, mutate func(*domain.ProcessorState)) (applied bool, err error) {
	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		state, err := o.states.GetForUpdate(ctx, tx, flowID, processorName)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProcessorNotFound, processorName)
			}
			return err
		}
		if state.Status.IsCompletion() {
			applied = false
			return nil
		}
		mutate(state)
		applied = true
		return o.states.Update(ctx, tx, state)
	})
	return applied, err
}

// recomputeAndDispatch runs after a processor reaches a completion status:
// it recomputes the flow's overall status, and — only if the flow is
// still non-terminal — enqueues every dependent of processorName whose
// predecessors are now all in the completion set.
func (o *Orchestrator) recomputeAndDispatch(ctx context.Context, flowID uuid.UUID, processorName string) error {
	flow, d, err := o.loadFlowAndDAG(ctx, flowID)
	if err != nil {
		return err
	}

	flow, err = o.RecomputeFlowStatus(ctx, flowID, d)
	if err != nil {
		return err
	}
	if flow.IsTerminal() {
		// Late callback after abort/completion: the row above was already
		// persisted, but no further processors are dispatched.
		return nil
	}

	for _, dependent := range d.Dependents(processorName) {
		if err := o.dispatchIfReady(ctx, flow, d, dependent); err != nil {
			return fmt.Errorf("dispatch %s: %w", dependent, err)
		}
	}
	return nil
}

// dispatchIfReady locks a single dependent's row, checks that every one of
// its predecessors is in the completion set, and if so marks it
// IN_PROGRESS and enqueues it. The lock on the dependent's own row (not on
// the predecessor that just completed) is what makes concurrent
// completions of sibling predecessors enqueue the dependent exactly once:
// whichever caller's transaction commits first flips the row out of
// PENDING, so the other caller's lock wait resolves to a no-op.
func (o *Orchestrator) dispatchIfReady(ctx context.Context, flow *domain.EventFlow, d *dag.FlowDAG, name string) error {
	deps, err := d.DependsOn(name)
	if err != nil {
		return err
	}

	var shouldEnqueue bool
	var inputs map[string]any

	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		state, err := o.states.GetForUpdate(ctx, tx, flow.ID, name)
		if err != nil {
			return err
		}
		if state.Status != domain.ProcessorStatusPending {
			// Already dispatched by a racing completion, or moved on
			// (e.g. aborted) since this check was queued.
			return nil
		}

		assembled, ready, err := o.assembleInputs(ctx, flow.ID, deps)
		if err != nil {
			return err
		}
		if !ready {
			return nil
		}

		state.MarkDispatched()
		if err := o.states.Update(ctx, tx, state); err != nil {
			return err
		}
		shouldEnqueue = true
		inputs = assembled
		return nil
	})
	if err != nil {
		return err
	}
	if !shouldEnqueue {
		return nil
	}

	if err := o.publisher.Enqueue(ctx, name, flow.ID, flow.RootArguments, inputs); err != nil {
		return fmt.Errorf("enqueue %s: %w", name, err)
	}
	return nil
}

// assembleInputs builds {predecessor_name -> result} for a dependent about
// to be dispatched. It reports ready=false (not an error) the moment any
// predecessor isn't yet in the completion set; a predecessor row that is
// missing entirely is a programmer error, reported as
// ErrMissingPredecessorOutput.
func (o *Orchestrator) assembleInputs(ctx context.Context, flowID uuid.UUID, deps []string) (map[string]any, bool, error) {
	assembled := make(map[string]any, len(deps))
	for _, pred := range deps {
		predState, err := o.states.GetByName(ctx, flowID, pred)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, false, fmt.Errorf("%w: %s", ErrMissingPredecessorOutput, pred)
			}
			return nil, false, err
		}
		if !predState.Status.IsCompletion() {
			return nil, false, nil
		}
		assembled[pred] = predState.Result
	}
	return assembled, true, nil
}
