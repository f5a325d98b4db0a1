// Package processors holds the concrete, named processor bodies for the
// "writing" flow-type: InterviewPrepGrammar, Coherence, WritingFinalScore,
// WritingSaver, AssessmentEvaluatorProcessor, and the termination
// processor AbortHandler.
//
// These are honest stubs, not real grammar/coherence scoring — the
// orchestrator only ever depends on a processor's I/O contract, never its
// internals. They exist so the DAG Registry, dispatch loop, and runtime
// classification ladder have something real to execute end to end.
//
// Each body logs through the flow_id/processor attribute pair, adapted
// from base_event_processor.py's log_debug/log_info/log_warn/log_error
// prefixing convention onto structured slog attributes.
package processors
