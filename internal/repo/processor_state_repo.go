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

// ProcessorStateRepo — репозиторий для работы с таблицей processor_states.
type ProcessorStateRepo struct {
	pool *pgxpool.Pool
}

// NewProcessorStateRepo создаёт новый ProcessorStateRepo.
func NewProcessorStateRepo(pool *pgxpool.Pool) *ProcessorStateRepo {
	return &ProcessorStateRepo{pool: pool}
}

// CreateBulk вставляет одну строку PENDING на каждый процессор. Вызывается
// StartFlow внутри той же транзакции, что и EventFlowRepo.Create, и
// AbortFlow при создании узлов обработки прерывания.
func (r *ProcessorStateRepo) CreateBulk(ctx context.Context, q Querier, states []*domain.ProcessorState) error {
	for _, s := range states {
		if _, err := q.Exec(ctx, `
			INSERT INTO processor_states (id, flow_id, processor_name, status, attempt)
			VALUES ($1, $2, $3, $4, $5)
		`, s.ID, s.FlowID, s.ProcessorName, s.Status, s.Attempt); err != nil {
			return fmt.Errorf("insert processor_state %s: %w", s.ProcessorName, err)
		}
	}
	return nil
}

// GetByName возвращает состояние процессора без блокировки строки.
func (r *ProcessorStateRepo) GetByName(ctx context.Context, flowID uuid.UUID, name string) (*domain.ProcessorState, error) {
	return r.scanOne(r.pool.QueryRow(ctx, r.selectQuery()+" WHERE flow_id = $1 AND processor_name = $2", flowID, name))
}

// GetForUpdate возвращает состояние процессора и удерживает блокировку
// строки до конца транзакции q. Это ключевой примитив для требования
// "readiness проверяется под блокировкой строки зависимого узла":
// Submit вызывает это для каждого dependent перед решением — ставить ли
// его в очередь.
func (r *ProcessorStateRepo) GetForUpdate(ctx context.Context, q Querier, flowID uuid.UUID, name string) (*domain.ProcessorState, error) {
	return r.scanOne(q.QueryRow(ctx, r.selectQuery()+" WHERE flow_id = $1 AND processor_name = $2 FOR UPDATE", flowID, name))
}

// ListByFlow возвращает все состояния процессоров flow, включая узлы
// обработки прерывания, упорядоченные по processor_name; фильтрацию при
// необходимости выполняет вызывающий код.
func (r *ProcessorStateRepo) ListByFlow(ctx context.Context, flowID uuid.UUID) ([]domain.ProcessorState, error) {
	rows, err := r.pool.Query(ctx, r.selectQuery()+" WHERE flow_id = $1 ORDER BY processor_name", flowID)
	if err != nil {
		return nil, fmt.Errorf("list processor_states: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// Update persists a processor state's full row (status, result, errors,
// timings, attempt count).
func (r *ProcessorStateRepo) Update(ctx context.Context, q Querier, s *domain.ProcessorState) error {
	resultJSON, err := json.Marshal(s.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	tag, err := q.Exec(ctx, `
		UPDATE processor_states
		SET status = $3, result = $4, error = $5, retriable_error = $6, attempt = $7,
		    start_time = $8, end_time = $9, run_duration_ms = $10
		WHERE flow_id = $1 AND processor_name = $2
	`, s.FlowID, s.ProcessorName, s.Status, resultJSON, s.Error, s.RetriableError, s.Attempt,
		s.StartTime, s.EndTime, s.RunDurationMs)
	if err != nil {
		return fmt.Errorf("update processor_state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTermination removes any termination-processor rows for a flow.
// Used by ResetAndRestart/Retry: termination handlers are re-created fresh
// on the next abort, they never carry state across a restart.
func (r *ProcessorStateRepo) DeleteTermination(ctx context.Context, q Querier, flowID uuid.UUID, terminationNames []string) error {
	if len(terminationNames) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		DELETE FROM processor_states WHERE flow_id = $1 AND processor_name = ANY($2)
	`, flowID, terminationNames)
	if err != nil {
		return fmt.Errorf("delete termination processor_states: %w", err)
	}
	return nil
}

// AbortPending flips every PENDING row of a flow (excluding termination
// processors, which are never PENDING before an abort creates them) to
// ABORTED. Used by AbortFlow: a node that never got the chance to start
// does not run, it is simply marked out.
func (r *ProcessorStateRepo) AbortPending(ctx context.Context, q Querier, flowID uuid.UUID, terminationNames []string) error {
	_, err := q.Exec(ctx, `
		UPDATE processor_states
		SET status = 'ABORTED', end_time = COALESCE(end_time, now())
		WHERE flow_id = $1
		  AND status = 'PENDING'
		  AND NOT (processor_name = ANY($2))
	`, flowID, terminationNames)
	if err != nil {
		return fmt.Errorf("abort pending processor_states: %w", err)
	}
	return nil
}

// ResetAll moves every non-termination row of a flow back to PENDING
// regardless of its current status, clearing result/timings. Used by
// ResetAndRestart, which re-runs the whole DAG from scratch.
func (r *ProcessorStateRepo) ResetAll(ctx context.Context, q Querier, flowID uuid.UUID, excludeNames []string) error {
	_, err := q.Exec(ctx, `
		UPDATE processor_states
		SET status = 'PENDING', result = NULL, error = '', retriable_error = '',
		    attempt = 0, start_time = NULL, end_time = NULL, run_duration_ms = NULL
		WHERE flow_id = $1 AND NOT (processor_name = ANY($2))
	`, flowID, excludeNames)
	if err != nil {
		return fmt.Errorf("reset all processor_states: %w", err)
	}
	return nil
}

// ResetByStatus moves rows currently in one of fromStatuses back to
// PENDING, clearing result/timings. Used by Retry, which only rewinds the
// failed/aborted/incomplete subset of the DAG and leaves already-COMPLETED
// nodes untouched.
func (r *ProcessorStateRepo) ResetByStatus(ctx context.Context, q Querier, flowID uuid.UUID, fromStatuses []domain.ProcessorStatus, excludeNames []string) error {
	statuses := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		statuses[i] = string(s)
	}
	_, err := q.Exec(ctx, `
		UPDATE processor_states
		SET status = 'PENDING', result = NULL, error = '', retriable_error = '',
		    attempt = 0, start_time = NULL, end_time = NULL, run_duration_ms = NULL
		WHERE flow_id = $1 AND status = ANY($2) AND NOT (processor_name = ANY($3))
	`, flowID, statuses, excludeNames)
	if err != nil {
		return fmt.Errorf("reset processor_states by status: %w", err)
	}
	return nil
}

// CountNotInCompletionSet returns how many of the given flow's
// non-termination processors are NOT in {COMPLETED, COMPLETED_WITH_ERROR}.
// RecomputeFlowStatus treats a result of 0 as "flow complete".
func (r *ProcessorStateRepo) CountNotInCompletionSet(ctx context.Context, q Querier, flowID uuid.UUID, terminationNames []string) (int, error) {
	var count int
	err := q.QueryRow(ctx, `
		SELECT COUNT(*) FROM processor_states
		WHERE flow_id = $1
		  AND NOT (processor_name = ANY($2))
		  AND status NOT IN ('COMPLETED', 'COMPLETED_WITH_ERROR')
	`, flowID, terminationNames).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incomplete processor_states: %w", err)
	}
	return count, nil
}

func (r *ProcessorStateRepo) selectQuery() string {
	return `
		SELECT id, flow_id, processor_name, status, result, error, retriable_error,
		       attempt, start_time, end_time, run_duration_ms
		FROM processor_states`
}

func (r *ProcessorStateRepo) scanOne(row pgx.Row) (*domain.ProcessorState, error) {
	var s domain.ProcessorState
	var resultJSON []byte
	err := row.Scan(
		&s.ID, &s.FlowID, &s.ProcessorName, &s.Status, &resultJSON, &s.Error, &s.RetriableError,
		&s.Attempt, &s.StartTime, &s.EndTime, &s.RunDurationMs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan processor_state: %w", err)
	}
	if resultJSON != nil {
		if err := json.Unmarshal(resultJSON, &s.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return &s, nil
}

func (r *ProcessorStateRepo) scanAll(rows pgx.Rows) ([]domain.ProcessorState, error) {
	var out []domain.ProcessorState
	for rows.Next() {
		var s domain.ProcessorState
		var resultJSON []byte
		if err := rows.Scan(
			&s.ID, &s.FlowID, &s.ProcessorName, &s.Status, &resultJSON, &s.Error, &s.RetriableError,
			&s.Attempt, &s.StartTime, &s.EndTime, &s.RunDurationMs,
		); err != nil {
			return nil, fmt.Errorf("scan processor_state: %w", err)
		}
		if resultJSON != nil {
			if err := json.Unmarshal(resultJSON, &s.Result); err != nil {
				return nil, fmt.Errorf("unmarshal result: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
