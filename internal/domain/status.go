package domain

// FlowStatus — статус выполнения flow.
//
// Жизненный цикл:
//
//	STARTED → COMPLETED
//	        ↘ ERROR
//	        ↘ ABORTED
//
// Терминальные статусы: COMPLETED, ERROR, ABORTED. Из терминального статуса
// flow не возвращается сам по себе — только через ResetAndRestart или Retry.
type FlowStatus string

const (
	// FlowStatusStarted — flow создан и хотя бы один процессор ещё не завершён.
	FlowStatusStarted FlowStatus = "STARTED"

	// FlowStatusCompleted — все процессоры достигли состояния завершения.
	FlowStatusCompleted FlowStatus = "COMPLETED"

	// FlowStatusError — flow прерван из-за фатальной ошибки процессора.
	FlowStatusError FlowStatus = "ERROR"

	// FlowStatusAborted — flow прерван вручную.
	FlowStatusAborted FlowStatus = "ABORTED"
)

// IsTerminal возвращает true, если статус финальный.
func (s FlowStatus) IsTerminal() bool {
	switch s {
	case FlowStatusCompleted, FlowStatusError, FlowStatusAborted:
		return true
	default:
		return false
	}
}

// ProcessorStatus — статус одного узла DAG в рамках конкретного flow.
//
// Жизненный цикл:
//
//	PENDING → IN_PROGRESS → COMPLETED
//	                      ↘ COMPLETED_WITH_ERROR
//	                      ↘ RETRIABLE_ERROR → (повторная постановка в очередь) → IN_PROGRESS
//	                      ↘ ERROR
//	PENDING → ABORTED (если flow прерван до старта узла)
type ProcessorStatus string

const (
	// ProcessorStatusPending — процессор создан, ждёт готовности зависимостей.
	ProcessorStatusPending ProcessorStatus = "PENDING"

	// ProcessorStatusInProgress — задача поставлена в очередь и выполняется воркером.
	ProcessorStatusInProgress ProcessorStatus = "IN_PROGRESS"

	// ProcessorStatusCompleted — процессор успешно завершён.
	ProcessorStatusCompleted ProcessorStatus = "COMPLETED"

	// ProcessorStatusCompletedWithError — процессор вернул результат вместе с
	// ошибкой (частичный успех); зависимые узлы считают его завершённым.
	ProcessorStatusCompletedWithError ProcessorStatus = "COMPLETED_WITH_ERROR"

	// ProcessorStatusError — процессор завершился фатально; flow прерывается.
	ProcessorStatusError ProcessorStatus = "ERROR"

	// ProcessorStatusRetriableError — транзиентная ошибка; воркер
	// переставит задачу в очередь с задержкой.
	ProcessorStatusRetriableError ProcessorStatus = "RETRIABLE_ERROR"

	// ProcessorStatusAborted — процессор так и не запустился, т.к. flow
	// прерван раньше, чем до него дошла очередь.
	ProcessorStatusAborted ProcessorStatus = "ABORTED"
)

// IsCompletion возвращает true для статусов, удовлетворяющих готовность
// зависимых узлов: COMPLETED и COMPLETED_WITH_ERROR.
func (s ProcessorStatus) IsCompletion() bool {
	switch s {
	case ProcessorStatusCompleted, ProcessorStatusCompletedWithError:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для статусов, из которых узел не продолжит
// выполнение сам по себе (нужен Retry/ResetAndRestart).
func (s ProcessorStatus) IsTerminal() bool {
	switch s {
	case ProcessorStatusCompleted, ProcessorStatusCompletedWithError,
		ProcessorStatusError, ProcessorStatusAborted:
		return true
	default:
		return false
	}
}

// TerminationCause — причина прерывания flow.
type TerminationCause string

const (
	// TerminationCauseManual — flow прерван вызовом извне.
	TerminationCauseManual TerminationCause = "MANUAL"

	// TerminationCauseProcessorError — flow прерван фатальной ошибкой процессора.
	TerminationCauseProcessorError TerminationCause = "PROCESSOR_ERROR"
)

// FlowStatusFor возвращает терминальный FlowStatus для причины прерывания.
func (c TerminationCause) FlowStatusFor() FlowStatus {
	if c == TerminationCauseManual {
		return FlowStatusAborted
	}
	return FlowStatusError
}
