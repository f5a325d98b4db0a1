package processors

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaiso/eventflow/internal/domain"
	"github.com/shaiso/eventflow/internal/runtime"
)

func TestWritingSaver_SimulatesWithoutSinkURL(t *testing.T) {
	p := NewWritingSaver(slog.Default())

	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{},
		Values: map[string]any{
			"WritingFinalScore": map[string]any{"final_score": 0.9},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("kind = %s, want RESULT", outcome.Kind)
	}
	if outcome.Result["sink"] != "simulated" {
		t.Errorf("sink = %v, want simulated", outcome.Result["sink"])
	}
	if outcome.Result["saved_id"] == "" {
		t.Error("saved_id should be populated even when simulated")
	}
	if outcome.Result["final_score"] != 0.9 {
		t.Errorf("final_score = %v, want 0.9 forwarded from WritingFinalScore", outcome.Result["final_score"])
	}
}

func TestWritingSaver_PostsToConfiguredSink(t *testing.T) {
	var receivedBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	p := NewWritingSaver(slog.Default())
	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"sink_url": server.URL},
		Values: map[string]any{
			"WritingFinalScore": map[string]any{"final_score": 0.75},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeResult {
		t.Fatalf("kind = %s, want RESULT", outcome.Kind)
	}
	if outcome.Result["status_code"] != http.StatusCreated {
		t.Errorf("status_code = %v, want 201", outcome.Result["status_code"])
	}
	if receivedBody["saved_id"] == nil {
		t.Error("sink should have received a saved_id in the payload")
	}
}

func TestWritingSaver_ServerErrorIsRetriable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewWritingSaver(slog.Default())
	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"sink_url": server.URL},
		Values:        map[string]any{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeRetriableError {
		t.Fatalf("kind = %s, want RETRIABLE_ERROR for a 5xx sink response", outcome.Kind)
	}
}

func TestWritingSaver_ClientErrorIsCritical(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	p := NewWritingSaver(slog.Default())
	outcome, err := p.Execute(context.Background(), runtime.Input{
		RootArguments: map[string]any{"sink_url": server.URL},
		Values:        map[string]any{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Kind != domain.OutcomeCriticalError {
		t.Fatalf("kind = %s, want CRITICAL_ERROR for a 4xx sink response", outcome.Kind)
	}
}
