package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/orchestrator"
	"github.com/shaiso/eventflow/internal/queue"
	"github.com/shaiso/eventflow/internal/repo"
)

const (
	defaultHydrationAttempts = 3
	defaultHydrationBaseWait = time.Second
)

// Config configures a Runtime.
type Config struct {
	Flows        *repo.EventFlowRepo
	Orchestrator *orchestrator.Orchestrator
	Publisher    *queue.Publisher
	Registry     *Registry

	// HydrationAttempts/HydrationBaseWait override the flow-row-visibility
	// retry (default 3 attempts, base 1s, doubling).
	HydrationAttempts int
	HydrationBaseWait time.Duration

	Logger *slog.Logger
}

// Runtime executes one dispatch: hydrate the flow, run the named
// processor body, and translate its tagged Outcome into the matching
// Orchestrator callback. It holds no per-flow state — a single Runtime
// serves every dispatch a worker process consumes.
type Runtime struct {
	flows        *repo.EventFlowRepo
	orchestrator *orchestrator.Orchestrator
	publisher    *queue.Publisher
	registry     *Registry

	hydrationAttempts int
	hydrationBaseWait time.Duration

	logger *slog.Logger
}

// New creates a Runtime.
func New(cfg Config) *Runtime {
	attempts := cfg.HydrationAttempts
	if attempts <= 0 {
		attempts = defaultHydrationAttempts
	}
	baseWait := cfg.HydrationBaseWait
	if baseWait <= 0 {
		baseWait = defaultHydrationBaseWait
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		flows:             cfg.Flows,
		orchestrator:      cfg.Orchestrator,
		publisher:         cfg.Publisher,
		registry:          cfg.Registry,
		hydrationAttempts: attempts,
		hydrationBaseWait: baseWait,
		logger:            logger,
	}
}

// Dispatch runs one processor invocation described by payload. A returned
// error means the underlying queue delivery should be nacked and
// requeued plainly (hydration exhausted, an unregistered processor name,
// or a body that returned a Go error rather than a tagged Outcome — all
// infrastructure-level conditions, not domain outcomes). A nil return
// means the delivery should be acked: the domain outcome, whatever it
// was, has already been fully reported to the Orchestrator (and, for
// RETRIABLE_ERROR, re-enqueued onto the appropriate delay-ladder stage).
func (rt *Runtime) Dispatch(ctx context.Context, payload queue.DispatchPayload) error {
	log := rt.logger.With("flow_id", payload.FlowID, "processor_name", payload.ProcessorName, "attempt", payload.Attempt)

	if _, err := rt.hydrateFlow(ctx, payload.FlowID); err != nil {
		return fmt.Errorf("%w: %s", ErrFlowHydrationFailed, err)
	}

	proc, err := rt.registry.Get(payload.ProcessorName)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", payload.ProcessorName, err)
	}

	if err := rt.orchestrator.MarkInProgress(ctx, payload.FlowID, payload.ProcessorName); err != nil {
		return fmt.Errorf("dispatch %s: %w", payload.ProcessorName, err)
	}

	input := Input{
		FlowID:        payload.FlowID,
		RootArguments: payload.RootArguments,
		Values:        payload.Inputs,
		Attempt:       payload.Attempt,
	}

	outcome, err := proc.Execute(ctx, input)
	if err != nil {
		log.Error("processor execution failed with infrastructure error", "error", err)
		return fmt.Errorf("execute %s: %w", payload.ProcessorName, err)
	}

	switch outcome.Kind {
	case domain.OutcomeResult:
		log.Info("processor completed")
		return rt.orchestrator.SubmitResult(ctx, payload.FlowID, payload.ProcessorName, outcome.Result, "")

	case domain.OutcomeResultWithError:
		log.Warn("processor completed with partial error", "stack", outcome.Stack)
		return rt.orchestrator.SubmitResult(ctx, payload.FlowID, payload.ProcessorName, outcome.Result, outcome.Stack)

	case domain.OutcomeRetriableError:
		log.Warn("processor returned a retriable error", "stack", outcome.Stack)
		if err := rt.orchestrator.SubmitRetriableError(ctx, payload.FlowID, payload.ProcessorName, outcome.Stack); err != nil {
			return err
		}
		return rt.publisher.EnqueueRetry(ctx, payload.ProcessorName, payload.FlowID,
			payload.RootArguments, payload.Inputs, payload.Attempt)

	case domain.OutcomeCriticalError:
		log.Error("processor returned a critical error, aborting flow", "stack", outcome.Stack)
		return rt.orchestrator.SubmitError(ctx, payload.FlowID, payload.ProcessorName, outcome.Stack, true)

	default:
		return fmt.Errorf("dispatch %s: unknown outcome kind %q", payload.ProcessorName, outcome.Kind)
	}
}

// hydrateFlow fetches the owning Flow row, retrying with exponential
// backoff to cover the gap between a writer's commit and a worker's
// read replica catching up.
func (rt *Runtime) hydrateFlow(ctx context.Context, flowID uuid.UUID) (*domain.EventFlow, error) {
	wait := rt.hydrationBaseWait
	var lastErr error
	for attempt := 1; attempt <= rt.hydrationAttempts; attempt++ {
		flow, err := rt.flows.GetByID(ctx, flowID)
		if err == nil {
			return flow, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		if attempt == rt.hydrationAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("flow %s not visible after %d attempts: %w", flowID, rt.hydrationAttempts, lastErr)
}
