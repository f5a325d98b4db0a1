package orchestrator

import "errors"

// Sentinel errors returned by Orchestrator methods.
var (
	// ErrFlowNotFound — flow_id does not name an existing Flow.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrProcessorNotFound — processor_name is not declared for the flow's
	// type, or has no ProcessorState row yet.
	ErrProcessorNotFound = errors.New("processor not found")

	// ErrMissingPredecessorOutput — a dependent became ready but one of its
	// predecessors has no persisted row. This is a programmer error (a
	// StartFlow bug or a DAG/state-store mismatch), never a runtime
	// condition, and is raised to the caller rather than retried.
	ErrMissingPredecessorOutput = errors.New("missing predecessor output")

	// ErrRetryRequiresManualIntervention — Retry was called on a flow whose
	// ERROR processor has a predecessor that is not yet in the completion
	// set. No state is changed when this is returned.
	ErrRetryRequiresManualIntervention = errors.New("retry requires manual intervention: predecessor incomplete")
)
