package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlowSchedule — расписание автоматического запуска flow определённого типа.
//
// В отличие от ранних ревизий Automata, расписание ссылается не на
// (flow_id, version), а на имя flow-типа в реестре DAG: версий здесь нет,
// DAG для каждого типа фиксирован в коде.
//
// FlowSchedule позволяет запускать flow:
//   - По cron-выражению: "0 9 * * *" (каждый день в 9:00)
//   - По интервалу: каждые N секунд
//
// Scheduler проверяет NextDueAt и вызывает StartFlow, когда время подошло.
type FlowSchedule struct {
	// ID — уникальный идентификатор schedule.
	ID uuid.UUID `json:"id"`

	// FlowType — имя flow-типа, который нужно запускать.
	FlowType string `json:"flow_type"`

	// Name — имя расписания для удобства.
	Name string `json:"name,omitempty"`

	// CronExpr — cron-выражение. Если задан, IntervalSec игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// IntervalSec — интервал в секундах между запусками.
	// Используется если CronExpr не задан.
	IntervalSec int `json:"interval_sec,omitempty"`

	// Timezone — часовой пояс для вычисления cron-времени. По умолчанию "UTC".
	Timezone string `json:"timezone"`

	// Enabled — флаг активности расписания.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующего запуска.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastRunAt — время последнего запуска.
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// LastFlowID — ID последнего созданного flow.
	LastFlowID *uuid.UUID `json:"last_flow_id,omitempty"`

	// RootArguments — аргументы, передаваемые StartFlow на каждом запуске.
	RootArguments map[string]any `json:"root_arguments,omitempty"`

	// CreatedAt — время создания schedule.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *FlowSchedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *FlowSchedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalSec > 0
}

// IsDue проверяет, пора ли запускать.
func (s *FlowSchedule) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.NextDueAt == nil {
		return false
	}
	return now.After(*s.NextDueAt) || now.Equal(*s.NextDueAt)
}

// RecordRun записывает информацию о запуске.
func (s *FlowSchedule) RecordRun(flowID uuid.UUID, nextDue time.Time) {
	now := time.Now()
	s.LastRunAt = &now
	s.LastFlowID = &flowID
	s.NextDueAt = &nextDue
	s.UpdatedAt = now
}

// IdempotencyKey возвращает ключ, уникальный для данного тика расписания.
// Используется для защиты от повторного создания flow, если Scheduler
// обработает один и тот же due-момент дважды (например, после рестарта).
func (s *FlowSchedule) IdempotencyKey() string {
	if s.NextDueAt == nil {
		return s.ID.String()
	}
	return s.ID.String() + "_" + s.NextDueAt.UTC().Format(time.RFC3339)
}
