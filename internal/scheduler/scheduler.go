package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/eventflow/internal/dag"
	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/orchestrator"
	"github.com/shaiso/eventflow/internal/repo"
)

const defaultBatchSize = 100

// Scheduler processes due FlowSchedule rows, calling orchestrator.StartFlow
// for each one. Unlike the teacher's Scheduler, there is no Run/FlowVersion
// layer to create a row in first — a schedule names a flow-type directly,
// and StartFlow both creates the Flow and enqueues its root processors.
type Scheduler struct {
	scheduleRepo *repo.ScheduleRepo
	flowRepo     *repo.EventFlowRepo
	orchestrator *orchestrator.Orchestrator
	logger       *slog.Logger
	batchSize    int
}

// Config configures a Scheduler.
type Config struct {
	ScheduleRepo *repo.ScheduleRepo
	FlowRepo     *repo.EventFlowRepo
	Orchestrator *orchestrator.Orchestrator
	Logger       *slog.Logger
	BatchSize    int // schedules processed per tick (default: 100)
}

// New creates a Scheduler.
func New(cfg Config) *Scheduler {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		scheduleRepo: cfg.ScheduleRepo,
		flowRepo:     cfg.FlowRepo,
		orchestrator: cfg.Orchestrator,
		logger:       logger,
		batchSize:    batchSize,
	}
}

// Tick runs one scheduler pass:
//  1. Finds due schedules (enabled=true, next_due_at <= now).
//  2. For each, starts a flow (guarded by IdempotencyKey so a restart
//     that re-processes the same due moment doesn't double-start it).
//  3. Advances next_due_at.
//
// A single schedule's failure never blocks the rest of the batch.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := time.Now()

	schedules, err := s.scheduleRepo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return fmt.Errorf("list due flow_schedules: %w", err)
	}
	if len(schedules) == 0 {
		return nil
	}

	s.logger.Debug("found due flow_schedules", "count", len(schedules))

	var processed, started int
	for i := range schedules {
		sched := &schedules[i]

		flowStarted, err := s.processSchedule(ctx, sched, now)
		if err != nil {
			s.logger.Error("failed to process flow_schedule",
				"schedule_id", sched.ID,
				"schedule_name", sched.Name,
				"error", err,
			)
			continue
		}

		processed++
		if flowStarted {
			started++
		}
	}

	s.logger.Info("scheduler tick completed", "due", len(schedules), "processed", processed, "flows_started", started)
	return nil
}

// processSchedule handles one schedule. It returns true if a new flow was
// started (false if this due moment had already been handled — the
// caller's idempotency key matched a flow created by an earlier tick or a
// crashed-and-restarted scheduler).
func (s *Scheduler) processSchedule(ctx context.Context, sched *domain.FlowSchedule, now time.Time) (bool, error) {
	initiatedBy := "scheduler:" + sched.IdempotencyKey()

	var flowID uuid.UUID
	flowStarted := true

	existing, err := s.flowRepo.GetByInitiatedBy(ctx, initiatedBy)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return false, fmt.Errorf("check idempotency for schedule %s: %w", sched.ID, err)
	}

	if existing != nil {
		s.logger.Debug("flow already started for this due moment (idempotency)",
			"schedule_id", sched.ID, "flow_id", existing.ID, "initiated_by", initiatedBy)
		flowID = existing.ID
		flowStarted = false
	} else {
		rootArgs := sched.RootArguments
		if rootArgs == nil {
			rootArgs = map[string]any{}
		}

		flowID, err = s.orchestrator.StartFlow(ctx, sched.FlowType, rootArgs, initiatedBy)
		if err != nil {
			if errors.Is(err, dag.ErrUnknownFlowType) {
				s.logger.Warn("flow_schedule references unknown flow_type, disabling",
					"schedule_id", sched.ID, "flow_type", sched.FlowType)
				return false, s.scheduleRepo.SetEnabled(ctx, sched.ID, false)
			}
			return false, fmt.Errorf("start flow for schedule %s: %w", sched.ID, err)
		}

		s.logger.Info("started flow from schedule",
			"flow_id", flowID, "schedule_id", sched.ID, "schedule_name", sched.Name, "flow_type", sched.FlowType)
	}

	nextDue, err := CalculateNextDue(sched, now)
	if err != nil {
		s.logger.Error("failed to calculate next_due_at, leaving schedule as-is", "schedule_id", sched.ID, "error", err)
		return flowStarted, nil
	}

	sched.RecordRun(flowID, nextDue)
	if err := s.scheduleRepo.Update(ctx, sched); err != nil {
		return flowStarted, fmt.Errorf("update flow_schedule: %w", err)
	}

	return flowStarted, nil
}
