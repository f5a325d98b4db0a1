package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/eventflow/internal/domain"
)

// EventFlowRepo — репозиторий для работы с таблицей event_flows.
type EventFlowRepo struct {
	pool *pgxpool.Pool
}

// NewEventFlowRepo создаёт новый EventFlowRepo.
func NewEventFlowRepo(pool *pgxpool.Pool) *EventFlowRepo {
	return &EventFlowRepo{pool: pool}
}

// Create вставляет новую строку flow. Вызывается StartFlow внутри одной
// транзакции вместе с bulk-созданием ProcessorState.
func (r *EventFlowRepo) Create(ctx context.Context, q Querier, flow *domain.EventFlow) error {
	rootArgsJSON, err := json.Marshal(flow.RootArguments)
	if err != nil {
		return fmt.Errorf("marshal root_arguments: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO event_flows (id, type, root_arguments, status, initiated_by, start_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, flow.ID, flow.Type, rootArgsJSON, flow.Status, flow.InitiatedBy, flow.StartTime)
	if err != nil {
		return fmt.Errorf("insert event_flow: %w", err)
	}
	return nil
}

// GetByID возвращает flow по ID без блокировки строки.
func (r *EventFlowRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EventFlow, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, type, root_arguments, status, initiated_by, start_time, end_time, run_duration_ms
		FROM event_flows WHERE id = $1
	`, id))
}

// GetByInitiatedBy returns the flow whose initiated_by exactly matches,
// or ErrNotFound. Used by the scheduler's duplicate-run guard: Flow has
// no separate idempotency-key column, so the schedule tick's
// "{schedule_id}_{next_due_at}" key is stored as (part of) initiated_by
// and looked up here before StartFlow is called again for the same due
// moment.
func (r *EventFlowRepo) GetByInitiatedBy(ctx context.Context, initiatedBy string) (*domain.EventFlow, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, type, root_arguments, status, initiated_by, start_time, end_time, run_duration_ms
		FROM event_flows WHERE initiated_by = $1
	`, initiatedBy))
}

// GetForUpdate возвращает flow и удерживает блокировку строки до конца
// транзакции q. Используется перед RecomputeFlowStatus и переходами
// статуса flow (AbortFlow, ResetAndRestart, Retry), чтобы конкурирующие
// вызовы не увидели противоречивую картину.
func (r *EventFlowRepo) GetForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*domain.EventFlow, error) {
	return r.scanOne(q.QueryRow(ctx, `
		SELECT id, type, root_arguments, status, initiated_by, start_time, end_time, run_duration_ms
		FROM event_flows WHERE id = $1 FOR UPDATE
	`, id))
}

// UpdateStatus persists a flow's status/end_time/run_duration_ms transition.
func (r *EventFlowRepo) UpdateStatus(ctx context.Context, q Querier, flow *domain.EventFlow) error {
	result, err := q.Exec(ctx, `
		UPDATE event_flows
		SET status = $2, end_time = $3, run_duration_ms = $4
		WHERE id = $1
	`, flow.ID, flow.Status, flow.EndTime, flow.RunDurationMs)
	if err != nil {
		return fmt.Errorf("update event_flow status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventFlowRepo) scanOne(row pgx.Row) (*domain.EventFlow, error) {
	var flow domain.EventFlow
	var rootArgsJSON []byte
	err := row.Scan(
		&flow.ID, &flow.Type, &rootArgsJSON, &flow.Status, &flow.InitiatedBy,
		&flow.StartTime, &flow.EndTime, &flow.RunDurationMs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event_flow: %w", err)
	}
	if rootArgsJSON != nil {
		if err := json.Unmarshal(rootArgsJSON, &flow.RootArguments); err != nil {
			return nil, fmt.Errorf("unmarshal root_arguments: %w", err)
		}
	}
	return &flow, nil
}
