package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/eventflow/internal/dag"
	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/queue"
	"github.com/shaiso/eventflow/internal/repo"
)

// Orchestrator is the controller described in the package doc: it owns no
// goroutines and no process-lifetime state, only handles to the State
// Store, the DAG Registry, and the Task Queue Client.
type Orchestrator struct {
	pool      *pgxpool.Pool
	flows     *repo.EventFlowRepo
	states    *repo.ProcessorStateRepo
	registry  *dag.Registry
	publisher *queue.Publisher
	logger    *slog.Logger
}

// Config wires an Orchestrator's collaborators.
type Config struct {
	Pool      *pgxpool.Pool
	Flows     *repo.EventFlowRepo
	States    *repo.ProcessorStateRepo
	Registry  *dag.Registry
	Publisher *queue.Publisher
	Logger    *slog.Logger
}

// New builds an Orchestrator from its collaborators. All fields of cfg are
// required except Logger, which falls back to slog.Default().
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		pool:      cfg.Pool,
		flows:     cfg.Flows,
		states:    cfg.States,
		registry:  cfg.Registry,
		publisher: cfg.Publisher,
		logger:    logger,
	}
}

// loadFlowAndDAG fetches the flow row and the DAG declared for its type.
// repo.ErrNotFound is translated to the package's ErrFlowNotFound so
// callers never need to reach into the repo package to classify it.
func (o *Orchestrator) loadFlowAndDAG(ctx context.Context, flowID uuid.UUID) (*domain.EventFlow, *dag.FlowDAG, error) {
	flow, err := o.flows.GetByID(ctx, flowID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
		}
		return nil, nil, fmt.Errorf("get flow %s: %w", flowID, err)
	}
	d, err := o.registry.Get(flow.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve dag for flow %s: %w", flowID, err)
	}
	return flow, d, nil
}
