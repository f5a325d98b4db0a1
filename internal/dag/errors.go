package dag

import "errors"

// Ошибки валидации и разрешения реестра DAG.
var (
	// ErrUnknownFlowType — запрошен flow-тип, не зарегистрированный в реестре.
	ErrUnknownFlowType = errors.New("unknown flow type")

	// ErrUnknownProcessor — запрошен процессор, не объявленный для flow-типа.
	ErrUnknownProcessor = errors.New("unknown processor")

	// ErrDuplicateProcessor — процессор объявлен в одном flow-типе дважды.
	ErrDuplicateProcessor = errors.New("duplicate processor")

	// ErrDanglingDependency — depends_on ссылается на необъявленный процессор.
	ErrDanglingDependency = errors.New("dangling dependency")

	// ErrCyclicDependency — граф зависимостей процессоров содержит цикл.
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrTerminationOverlap — имя встречается и среди processors, и среди
	// termination-процессоров одного flow-типа.
	ErrTerminationOverlap = errors.New("processor registered as both regular and termination")
)
