// Package orchestrator implements the controller component of the
// event-flow engine: it creates flows, seeds root processors, receives
// processor-completion callbacks from workers, assembles fan-in inputs for
// dependents, and drives abort/retry/reset.
//
// Unlike an earlier revision of this codebase, Orchestrator has no process
// identity of its own — no background consumer loop, no in-memory table of
// active runs. Every exported method is a plain function of
// (flow_id, state-store handle) that a worker calls synchronously right
// after a processor body returns, per the design note that replaces the
// "rebuild an Orchestrator object inside every callback" pattern with a
// stateless module. cmd/eventflow-worker is the only place that holds a
// *Orchestrator alongside the queue consumer that drives it.
//
// All state transitions go through pgx row-level locks
// (SELECT ... FOR UPDATE) acquired inside a single transaction, never held
// open across a queue publish: Enqueue always happens after the owning
// transaction has committed.
package orchestrator
