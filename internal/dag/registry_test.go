package dag

import (
	"errors"
	"testing"
)

func TestRegister_Diamond(t *testing.T) {
	r := NewRegistry()
	r.Register("diamond", []ProcessorDef{
		{Name: "A"},
		{Name: "B", DependsOn: []string{"A"}},
		{Name: "C", DependsOn: []string{"A"}},
		{Name: "D", DependsOn: []string{"B", "C"}},
	}, nil)

	d, err := r.Get("diamond")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roots := d.RootProcessors()
	if len(roots) != 1 || roots[0] != "A" {
		t.Fatalf("expected root [A], got %v", roots)
	}

	deps, err := d.DependsOn("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 || deps[0] != "B" || deps[1] != "C" {
		t.Fatalf("expected D depends on [B C], got %v", deps)
	}

	dependents := d.Dependents("A")
	if len(dependents) != 2 || dependents[0] != "B" || dependents[1] != "C" {
		t.Fatalf("expected A dependents [B C], got %v", dependents)
	}
}

func TestBuildFlowDAG_CyclicDependency(t *testing.T) {
	_, err := buildFlowDAG("cyclic", []ProcessorDef{
		{Name: "A", DependsOn: []string{"C"}},
		{Name: "B", DependsOn: []string{"A"}},
		{Name: "C", DependsOn: []string{"B"}},
	}, nil)
	if !errors.Is(err, ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}
}

func TestBuildFlowDAG_DanglingDependency(t *testing.T) {
	_, err := buildFlowDAG("dangling", []ProcessorDef{
		{Name: "A", DependsOn: []string{"ghost"}},
	}, nil)
	if !errors.Is(err, ErrDanglingDependency) {
		t.Fatalf("expected ErrDanglingDependency, got %v", err)
	}
}

func TestBuildFlowDAG_TerminationOverlap(t *testing.T) {
	_, err := buildFlowDAG("overlap", []ProcessorDef{
		{Name: "A"},
	}, []string{"A"})
	if !errors.Is(err, ErrTerminationOverlap) {
		t.Fatalf("expected ErrTerminationOverlap, got %v", err)
	}
}

func TestBuildFlowDAG_DuplicateProcessor(t *testing.T) {
	_, err := buildFlowDAG("dup", []ProcessorDef{
		{Name: "A"},
		{Name: "A"},
	}, nil)
	if !errors.Is(err, ErrDuplicateProcessor) {
		t.Fatalf("expected ErrDuplicateProcessor, got %v", err)
	}
}

func TestRegisterWritingFlow(t *testing.T) {
	r := NewRegistry()
	RegisterWritingFlow(r)

	d, err := r.Get("writing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roots := d.RootProcessors()
	if len(roots) != 2 || roots[0] != "InterviewPrepGrammar" || roots[1] != "Coherence" {
		t.Fatalf("unexpected roots: %v", roots)
	}

	term := d.TerminationProcessors()
	if len(term) != 1 || term[0] != "AbortHandler" {
		t.Fatalf("unexpected termination set: %v", term)
	}

	if !d.HasProcessor("WritingFinalScore") {
		t.Fatal("expected WritingFinalScore to be a declared processor")
	}
	if d.HasProcessor("AbortHandler") {
		t.Fatal("AbortHandler must not count as a regular processor")
	}
}

func TestGet_UnknownFlowType(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); !errors.Is(err, ErrUnknownFlowType) {
		t.Fatalf("expected ErrUnknownFlowType, got %v", err)
	}
}
