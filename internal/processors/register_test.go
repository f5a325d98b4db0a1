package processors

import (
	"log/slog"
	"testing"

	"github.com/shaiso/eventflow/internal/dag"
	"github.com/shaiso/eventflow/internal/runtime"
)

// TestRegister_CoversEveryDeclaredFlowType mirrors the startup consistency
// check cmd/eventflow-worker runs: every processor and termination
// processor a registered flow type declares must have a body here.
func TestRegister_CoversEveryDeclaredFlowType(t *testing.T) {
	reg := runtime.NewRegistry()
	Register(reg, slog.Default())

	have := make(map[string]bool)
	for _, name := range reg.Names() {
		have[name] = true
	}

	flowRegistry := dag.NewRegistry()
	dag.RegisterWritingFlow(flowRegistry)

	for _, flowType := range flowRegistry.FlowTypes() {
		d, err := flowRegistry.Get(flowType)
		if err != nil {
			t.Fatalf("get flow type %s: %v", flowType, err)
		}
		for _, name := range d.Processors() {
			if !have[name] {
				t.Errorf("flow type %s declares processor %s with no registered body", flowType, name)
			}
		}
		for _, name := range d.TerminationProcessors() {
			if !have[name] {
				t.Errorf("flow type %s declares termination processor %s with no registered body", flowType, name)
			}
		}
	}
}
