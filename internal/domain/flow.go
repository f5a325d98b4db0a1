package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventFlow — одно исполнение DAG-а процессоров, зарегистрированного под
// именем Type в реестре DAG. В отличие от ранних ревизий Automata, здесь
// нет отдельного понятия версии: набор процессоров и их зависимостей для
// данного Type фиксирован в коде и не редактируется через API.
type EventFlow struct {
	// ID — уникальный идентификатор flow.
	ID uuid.UUID `json:"id"`

	// Type — имя flow-типа, ключ в реестре DAG.
	Type string `json:"type"`

	// RootArguments — непрозрачные данные, переданные при создании flow;
	// передаются без изменений каждому процессору.
	RootArguments map[string]any `json:"root_arguments"`

	// Status — текущий статус flow.
	Status FlowStatus `json:"status"`

	// InitiatedBy — свободная строка, обозначающая инициатора (пользователь,
	// планировщик, другой сервис).
	InitiatedBy string `json:"initiated_by"`

	// StartTime — момент создания flow.
	StartTime time.Time `json:"start_time"`

	// EndTime — момент перехода в терминальный статус.
	EndTime *time.Time `json:"end_time,omitempty"`

	// RunDurationMs — EndTime - StartTime в миллисекундах, заполняется вместе с EndTime.
	RunDurationMs *int64 `json:"run_duration_ms,omitempty"`
}

// NewEventFlow создаёт новый flow в статусе STARTED.
func NewEventFlow(flowType string, rootArgs map[string]any, initiatedBy string) *EventFlow {
	if rootArgs == nil {
		rootArgs = map[string]any{}
	}
	return &EventFlow{
		ID:            uuid.New(),
		Type:          flowType,
		RootArguments: rootArgs,
		Status:        FlowStatusStarted,
		InitiatedBy:   initiatedBy,
		StartTime:     time.Now(),
	}
}

// MarkTerminal переводит flow в терминальный статус и фиксирует длительность.
func (f *EventFlow) MarkTerminal(status FlowStatus) {
	now := time.Now()
	f.Status = status
	f.EndTime = &now
	dur := now.Sub(f.StartTime).Milliseconds()
	f.RunDurationMs = &dur
}

// MarkRestarted возвращает flow в состояние STARTED, очищая время завершения.
// Используется ResetAndRestart/Retry.
func (f *EventFlow) MarkRestarted() {
	f.Status = FlowStatusStarted
	f.EndTime = nil
	f.RunDurationMs = nil
}

// IsTerminal — удобный проброс к FlowStatus.IsTerminal.
func (f *EventFlow) IsTerminal() bool {
	return f.Status.IsTerminal()
}
