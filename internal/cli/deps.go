package cli

import (
	"github.com/shaiso/eventflow/internal/orchestrator"
	"github.com/shaiso/eventflow/internal/repo"
)

// Deps bundles the direct, in-process dependencies every command needs.
// It plays the role the teacher's clientFn closure played, minus the
// HTTP round trip: commands read straight off these repos and call the
// orchestrator in the same process.
type Deps struct {
	Flows        *repo.EventFlowRepo
	States       *repo.ProcessorStateRepo
	Schedules    *repo.ScheduleRepo
	Orchestrator *orchestrator.Orchestrator
}
