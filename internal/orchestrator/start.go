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

// StartFlow creates a new Flow of the given type together with one PENDING
// ProcessorState per processor declared for that type, then enqueues every
// root processor (empty depends_on). The insert happens in a single
// transaction; Enqueue only runs after that transaction has committed, so
// a worker can never dequeue a task for a flow whose rows aren't visible
// yet.
func (o *Orchestrator) StartFlow(ctx context.Context, flowType string, rootArgs map[string]any, initiatedBy string) (uuid.UUID, error) {
	d, err := o.registry.Get(flowType)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start flow: %w", err)
	}

	flow := domain.NewEventFlow(flowType, rootArgs, initiatedBy)
	processors := d.Processors()
	states := make([]*domain.ProcessorState, 0, len(processors))
	for _, name := range processors {
		states = append(states, domain.NewProcessorState(flow.ID, name))
	}

	err = repo.WithTx(ctx, o.pool, func(tx pgx.Tx) error {
		if err := o.flows.Create(ctx, tx, flow); err != nil {
			return err
		}
		return o.states.CreateBulk(ctx, tx, states)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create flow %s (type %s): %w", flow.ID, flowType, err)
	}

	roots := d.RootProcessors()
	o.logger.Info("flow started", "flow_id", flow.ID, "type", flowType, "roots", roots)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range roots {
		name := name
		g.Go(func() error {
			return o.publisher.Enqueue(gctx, name, flow.ID, rootArgs, map[string]any{})
		})
	}
	if err := g.Wait(); err != nil {
		o.logger.Error("failed to enqueue root processor", "flow_id", flow.ID, "error", err)
		return flow.ID, fmt.Errorf("enqueue root processors for flow %s: %w", flow.ID, err)
	}

	return flow.ID, nil
}
