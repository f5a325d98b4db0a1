package runtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaiso/eventflow/internal/domain"
)

// Input is everything a processor body needs to run: the flow it belongs
// to, the arguments it was started with, and the assembled results of its
// predecessors (empty for root and termination processors).
type Input struct {
	FlowID        uuid.UUID
	RootArguments map[string]any
	Values        map[string]any
	Attempt       int
}

// Processor is a single named node body. It returns a tagged Outcome
// rather than throwing: error is reserved for infrastructure failures
// (context cancellation, a panic recovered upstream) that the caller
// should treat as retriable without needing to inspect the processor's
// own logic.
type Processor interface {
	Execute(ctx context.Context, in Input) (domain.Outcome, error)
}

// ProcessorFunc adapts a plain function to the Processor interface, the
// way http.HandlerFunc adapts a function to http.Handler.
type ProcessorFunc func(ctx context.Context, in Input) (domain.Outcome, error)

// Execute calls f.
func (f ProcessorFunc) Execute(ctx context.Context, in Input) (domain.Outcome, error) {
	return f(ctx, in)
}

// Registry maps processor name to body. Looking up an unregistered name
// is a configuration bug, not a runtime condition to route around.
type Registry struct {
	processors map[string]Processor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]Processor)}
}

// Register adds a processor body under name. Registering the same name
// twice overwrites the previous body — callers register once at startup.
func (r *Registry) Register(name string, p Processor) {
	r.processors[name] = p
}

// Get looks up a processor body by name.
func (r *Registry) Get(name string) (Processor, error) {
	p, ok := r.processors[name]
	if !ok {
		return nil, ErrProcessorNotRegistered
	}
	return p, nil
}

// Names returns every registered processor name, for the startup
// consistency check against the DAG registry (every processor name a
// FlowDAG declares must resolve here; registered names that no FlowDAG
// declares are not checked).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.processors))
	for name := range r.processors {
		names = append(names, name)
	}
	return names
}
