// Package dag holds the static, validated DAG registry: for every flow
// type, the ordered set of processors with their dependencies, and the
// set of termination (compensating) processors run only on abort.
//
// The registry replaces the dynamic, per-run FlowSpec graph that an
// earlier revision of this codebase built from JSON at run time
// (internal/engine in that revision). Here the graph is a value built
// once at process start, by code, and validated eagerly: Register panics
// on a cycle, a dangling dependency, or a name declared both as a regular
// and a termination processor, so a broken DAG never reaches production —
// it fails the first time the binary starts.
package dag
