package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/eventflow/internal/domain"
)

// ScheduleRepo — репозиторий для работы с flow_schedules.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewScheduleRepo создаёт новый ScheduleRepo.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

// Create создаёт новый schedule.
func (r *ScheduleRepo) Create(ctx context.Context, schedule *domain.FlowSchedule) error {
	rootArgsJSON, err := json.Marshal(schedule.RootArguments)
	if err != nil {
		return fmt.Errorf("marshal root_arguments: %w", err)
	}

	query := `
		INSERT INTO flow_schedules (id, flow_type, name, cron_expr, interval_sec, timezone,
		                            enabled, next_due_at, root_arguments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.pool.Exec(ctx, query,
		schedule.ID,
		schedule.FlowType,
		nullString(schedule.Name),
		nullString(schedule.CronExpr),
		nullInt(schedule.IntervalSec),
		schedule.Timezone,
		schedule.Enabled,
		schedule.NextDueAt,
		rootArgsJSON,
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flow_schedule: %w", err)
	}
	return nil
}

// GetByID возвращает schedule по ID.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlowSchedule, error) {
	return r.scanSchedule(r.pool.QueryRow(ctx, r.selectQuery()+" WHERE id = $1", id))
}

// List возвращает список schedules с фильтрацией.
func (r *ScheduleRepo) List(ctx context.Context, filter ScheduleFilter) ([]domain.FlowSchedule, error) {
	query := r.selectQuery() + `
		WHERE ($1::text IS NULL OR flow_type = $1)
		  AND ($2::boolean IS NULL OR enabled = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.FlowType),
		filter.Enabled,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list flow_schedules: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListDue возвращает schedules, готовые к выполнению.
func (r *ScheduleRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.FlowSchedule, error) {
	query := r.selectQuery() + `
		WHERE enabled = true
		  AND next_due_at IS NOT NULL
		  AND next_due_at <= $1
		ORDER BY next_due_at ASC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due flow_schedules: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update обновляет schedule.
func (r *ScheduleRepo) Update(ctx context.Context, schedule *domain.FlowSchedule) error {
	rootArgsJSON, err := json.Marshal(schedule.RootArguments)
	if err != nil {
		return fmt.Errorf("marshal root_arguments: %w", err)
	}

	query := `
		UPDATE flow_schedules
		SET name = $2, cron_expr = $3, interval_sec = $4, timezone = $5,
		    enabled = $6, next_due_at = $7, last_run_at = $8, last_run_id = $9,
		    root_arguments = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		schedule.ID,
		nullString(schedule.Name),
		nullString(schedule.CronExpr),
		nullInt(schedule.IntervalSec),
		schedule.Timezone,
		schedule.Enabled,
		schedule.NextDueAt,
		schedule.LastRunAt,
		schedule.LastFlowID,
		rootArgsJSON,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update flow_schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет schedule.
func (r *ScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM flow_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete flow_schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled включает/выключает schedule.
func (r *ScheduleRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE flow_schedules SET enabled = $2, updated_at = NOW() WHERE id = $1
	`, id, enabled)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// ScheduleFilter — параметры фильтрации schedules.
type ScheduleFilter struct {
	FlowType string
	Enabled  *bool
	Limit    int
	Offset   int
}

func (r *ScheduleRepo) selectQuery() string {
	return `
		SELECT id, flow_type, name, cron_expr, interval_sec, timezone, enabled,
		       next_due_at, last_run_at, last_run_id, root_arguments, created_at, updated_at
		FROM flow_schedules`
}

func (r *ScheduleRepo) scanSchedule(row pgx.Row) (*domain.FlowSchedule, error) {
	var s domain.FlowSchedule
	var name, cronExpr *string
	var intervalSec *int
	var rootArgsJSON []byte

	err := row.Scan(
		&s.ID, &s.FlowType, &name, &cronExpr, &intervalSec, &s.Timezone, &s.Enabled,
		&s.NextDueAt, &s.LastRunAt, &s.LastFlowID, &rootArgsJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flow_schedule: %w", err)
	}
	return r.fill(&s, name, cronExpr, intervalSec, rootArgsJSON)
}

func (r *ScheduleRepo) scanAll(rows pgx.Rows) ([]domain.FlowSchedule, error) {
	var out []domain.FlowSchedule
	for rows.Next() {
		var s domain.FlowSchedule
		var name, cronExpr *string
		var intervalSec *int
		var rootArgsJSON []byte

		if err := rows.Scan(
			&s.ID, &s.FlowType, &name, &cronExpr, &intervalSec, &s.Timezone, &s.Enabled,
			&s.NextDueAt, &s.LastRunAt, &s.LastFlowID, &rootArgsJSON, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan flow_schedule: %w", err)
		}
		filled, err := r.fill(&s, name, cronExpr, intervalSec, rootArgsJSON)
		if err != nil {
			return nil, err
		}
		out = append(out, *filled)
	}
	return out, rows.Err()
}

func (r *ScheduleRepo) fill(s *domain.FlowSchedule, name, cronExpr *string, intervalSec *int, rootArgsJSON []byte) (*domain.FlowSchedule, error) {
	if name != nil {
		s.Name = *name
	}
	if cronExpr != nil {
		s.CronExpr = *cronExpr
	}
	if intervalSec != nil {
		s.IntervalSec = *intervalSec
	}
	if rootArgsJSON != nil {
		if err := json.Unmarshal(rootArgsJSON, &s.RootArguments); err != nil {
			return nil, fmt.Errorf("unmarshal root_arguments: %w", err)
		}
	}
	return s, nil
}

// nullInt возвращает nil для нулевого int.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
