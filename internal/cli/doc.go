// Package cli implements the eventflow command-line tool.
//
// Unlike the teacher's cli package, this one never speaks HTTP: it is
// the operator's direct caller into the Caller API (internal/orchestrator)
// and the repos, in the same process, against the same database the
// workers and scheduler use. There is no server to point it at per §1's
// non-goal on an HTTP surface.
//
// # Commands
//
//	flow start --type TYPE [--args JSON] [--initiated-by STR]
//	flow retry FLOW_ID
//	flow reset FLOW_ID
//	schedule list
//	schedule create --flow-type TYPE [--name STR] (--cron EXPR | --interval SEC) [--args JSON]
//
// Output formatting (table vs --json) is unchanged from the teacher's
// Output type: data on stdout, Success/Error messages on stderr, so
// `eventflow flow start ... --json | jq .` still works.
package cli
