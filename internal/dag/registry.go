package dag

import "fmt"

// ProcessorDef — объявление одного процессора внутри flow-типа: его имя и
// список имён процессоров, завершения которых он ждёт. Пустой DependsOn
// делает процессор корневым — он ставится в очередь сразу при StartFlow.
type ProcessorDef struct {
	Name      string
	DependsOn []string
}

// FlowDAG — провалидированный, неизменяемый граф процессоров одного
// flow-типа. Строится один раз при регистрации и дальше только читается.
type FlowDAG struct {
	flowType string

	// order — порядок объявления процессоров (важен для детерминированных
	// tie-break'ов при одновременной готовности нескольких узлов).
	order []string

	dependsOn  map[string][]string
	dependents map[string][]string
	roots      []string

	termination []string
	isProcessor map[string]bool
}

// Type возвращает имя flow-типа.
func (d *FlowDAG) Type() string { return d.flowType }

// Processors возвращает имена процессоров в порядке объявления.
func (d *FlowDAG) Processors() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// RootProcessors возвращает имена процессоров без зависимостей, в порядке
// объявления.
func (d *FlowDAG) RootProcessors() []string {
	out := make([]string, len(d.roots))
	copy(out, d.roots)
	return out
}

// TerminationProcessors возвращает имена процессоров обработки прерывания.
func (d *FlowDAG) TerminationProcessors() []string {
	out := make([]string, len(d.termination))
	copy(out, d.termination)
	return out
}

// DependsOn возвращает список предшественников процессора name.
func (d *FlowDAG) DependsOn(name string) ([]string, error) {
	deps, ok := d.dependsOn[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s in flow type %s", ErrUnknownProcessor, name, d.flowType)
	}
	return deps, nil
}

// Dependents возвращает список процессоров, которые ждут завершения name,
// в порядке объявления.
func (d *FlowDAG) Dependents(name string) []string {
	return d.dependents[name]
}

// HasProcessor сообщает, объявлен ли процессор name (не термин.) в этом DAG.
func (d *FlowDAG) HasProcessor(name string) bool {
	return d.isProcessor[name]
}

// Registry — статическая таблица DAG-ов по flow-типу. Заполняется один
// раз при старте процесса; дальше только читается, поэтому безопасна для
// конкурентного доступа без блокировок.
type Registry struct {
	types map[string]*FlowDAG
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*FlowDAG)}
}

// Register объявляет flow-тип: набор процессоров с их зависимостями и
// набор процессоров обработки прерывания. Строит и валидирует граф
// (отсутствие циклов, отсутствие висячих зависимостей, непересечение
// processors и termination_processor). Паникует при нарушении — вызывается
// только на старте процесса из кода, а не в ответ на внешний ввод.
func (r *Registry) Register(flowType string, processors []ProcessorDef, termination []string) {
	d, err := buildFlowDAG(flowType, processors, termination)
	if err != nil {
		panic(fmt.Sprintf("dag: register %q: %v", flowType, err))
	}
	r.types[flowType] = d
}

// Get возвращает провалидированный DAG для flow-типа.
func (r *Registry) Get(flowType string) (*FlowDAG, error) {
	d, ok := r.types[flowType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlowType, flowType)
	}
	return d, nil
}

// FlowTypes возвращает имена всех зарегистрированных flow-типов.
func (r *Registry) FlowTypes() []string {
	out := make([]string, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	return out
}

func buildFlowDAG(flowType string, processors []ProcessorDef, termination []string) (*FlowDAG, error) {
	d := &FlowDAG{
		flowType:   flowType,
		dependsOn:  make(map[string][]string, len(processors)),
		dependents: make(map[string][]string, len(processors)),
		isProcessor: make(map[string]bool, len(processors)),
	}

	for _, p := range processors {
		if d.isProcessor[p.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProcessor, p.Name)
		}
		d.isProcessor[p.Name] = true
		d.order = append(d.order, p.Name)
		d.dependsOn[p.Name] = append([]string(nil), p.DependsOn...)
	}

	terminationSet := make(map[string]bool, len(termination))
	for _, name := range termination {
		if terminationSet[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProcessor, name)
		}
		terminationSet[name] = true
		if d.isProcessor[name] {
			return nil, fmt.Errorf("%w: %s", ErrTerminationOverlap, name)
		}
	}
	d.termination = append([]string(nil), termination...)

	for _, p := range processors {
		for _, dep := range p.DependsOn {
			if !d.isProcessor[dep] {
				return nil, fmt.Errorf("%w: %s depends on undeclared %s", ErrDanglingDependency, p.Name, dep)
			}
			d.dependents[dep] = append(d.dependents[dep], p.Name)
		}
		if len(p.DependsOn) == 0 {
			d.roots = append(d.roots, p.Name)
		}
	}

	if err := detectCycle(d.order, d.dependsOn); err != nil {
		return nil, err
	}

	return d, nil
}

// detectCycle запускает топологическую сортировку по алгоритму Кана: если
// не удаётся обработать все узлы, значит граф содержит цикл. Тот же приём,
// что и в ранней реализации движка для динамических FlowSpec, но без
// узлов parallel/join — здесь граф процессоров плоский.
func detectCycle(order []string, dependsOn map[string][]string) error {
	inDegree := make(map[string]int, len(order))
	for _, name := range order {
		inDegree[name] = len(dependsOn[name])
	}

	dependents := make(map[string][]string, len(order))
	for _, name := range order {
		for _, dep := range dependsOn[name] {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(order))
	for _, name := range order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	processed := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		processed++

		for _, dependent := range dependents[name] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if processed != len(order) {
		return ErrCyclicDependency
	}
	return nil
}
