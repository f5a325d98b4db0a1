package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessorState — состояние одного узла DAG в рамках конкретного flow.
//
// Пара (FlowID, ProcessorName) уникальна: на один процессор в рамках flow
// приходится ровно одна строка, кроме узлов обработки прерывания, которые
// создаются лениво при AbortFlow.
type ProcessorState struct {
	// ID — уникальный идентификатор строки.
	ID uuid.UUID `json:"id"`

	// FlowID — владеющий flow.
	FlowID uuid.UUID `json:"flow_id"`

	// ProcessorName — имя процессора, как оно объявлено в реестре DAG.
	ProcessorName string `json:"processor_name"`

	// Status — текущий статус узла.
	Status ProcessorStatus `json:"status"`

	// Result — структурированный результат при успехе или частичном успехе.
	Result map[string]any `json:"result,omitempty"`

	// Error — трассировка стека при ERROR или COMPLETED_WITH_ERROR.
	Error string `json:"error,omitempty"`

	// RetriableError — трассировка последней транзиентной ошибки;
	// перезаписывается на каждой повторной попытке.
	RetriableError string `json:"retriable_error,omitempty"`

	// Attempt — счётчик запусков узла (увеличивается при каждом переходе в
	// IN_PROGRESS). Не входит в модель состояния из спецификации и не
	// влияет на готовность зависимых узлов; ступень задержки retry
	// выбирается по номеру попытки из сообщения очереди, а не по этому полю.
	Attempt int `json:"attempt"`

	// StartTime — момент перехода в IN_PROGRESS.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime — момент перехода в один из терминальных статусов узла.
	EndTime *time.Time `json:"end_time,omitempty"`

	// RunDurationMs — EndTime - StartTime в миллисекундах.
	RunDurationMs *int64 `json:"run_duration_ms,omitempty"`
}

// NewProcessorState создаёт узел в статусе PENDING.
func NewProcessorState(flowID uuid.UUID, processorName string) *ProcessorState {
	return &ProcessorState{
		ID:            uuid.New(),
		FlowID:        flowID,
		ProcessorName: processorName,
		Status:        ProcessorStatusPending,
	}
}

// MarkDispatched переводит узел в IN_PROGRESS и фиксирует время старта.
func (p *ProcessorState) MarkDispatched() {
	now := time.Now()
	p.Status = ProcessorStatusInProgress
	p.StartTime = &now
	p.Attempt++
}

// markFinished — общий хвост для всех переходов в терминальный для узла статус.
func (p *ProcessorState) markFinished(status ProcessorStatus) {
	now := time.Now()
	p.Status = status
	p.EndTime = &now
	if p.StartTime != nil {
		dur := now.Sub(*p.StartTime).Milliseconds()
		p.RunDurationMs = &dur
	}
}

// MarkCompleted записывает успешный результат.
func (p *ProcessorState) MarkCompleted(result map[string]any) {
	p.Result = result
	p.Error = ""
	p.markFinished(ProcessorStatusCompleted)
}

// MarkCompletedWithError записывает частичный результат вместе с ошибкой.
func (p *ProcessorState) MarkCompletedWithError(result map[string]any, stack string) {
	p.Result = result
	p.Error = stack
	p.markFinished(ProcessorStatusCompletedWithError)
}

// MarkError записывает фатальную ошибку.
func (p *ProcessorState) MarkError(stack string) {
	p.Error = stack
	p.markFinished(ProcessorStatusError)
}

// MarkRetriableError записывает транзиентную ошибку. Узел остаётся
// незавершённым: воркер обязан переставить задачу в очередь.
func (p *ProcessorState) MarkRetriableError(stack string) {
	p.RetriableError = stack
	p.Status = ProcessorStatusRetriableError
}

// MarkAborted переводит ожидающий узел в ABORTED без исполнения.
func (p *ProcessorState) MarkAborted() {
	p.markFinished(ProcessorStatusAborted)
}

// ResetToPending возвращает узел в PENDING, очищая результат и тайминги.
// Используется Retry/ResetAndRestart.
func (p *ProcessorState) ResetToPending() {
	p.Status = ProcessorStatusPending
	p.Result = nil
	p.Error = ""
	p.RetriableError = ""
	p.Attempt = 0
	p.StartTime = nil
	p.EndTime = nil
	p.RunDurationMs = nil
}
