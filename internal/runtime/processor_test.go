package runtime

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/shaiso/eventflow/internal/domain"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	body := ProcessorFunc(func(ctx context.Context, in Input) (domain.Outcome, error) {
		return domain.Result(map[string]any{"ok": true}), nil
	})
	reg.Register("Echo", body)

	got, err := reg.Get("Echo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcome, err := got.Execute(context.Background(), Input{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Result["ok"] != true {
		t.Errorf("registered body did not run")
	}
}

func TestRegistry_GetUnregisteredFails(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Get("Missing"); !errors.Is(err, ErrProcessorNotRegistered) {
		t.Fatalf("expected ErrProcessorNotRegistered, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	noop := ProcessorFunc(func(ctx context.Context, in Input) (domain.Outcome, error) {
		return domain.Outcome{}, nil
	})
	reg.Register("A", noop)
	reg.Register("B", noop)

	names := reg.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("unexpected names: %v", names)
	}
}
