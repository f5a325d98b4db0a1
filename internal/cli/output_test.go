package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestOutput_TableMode(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{w: &buf, errW: &bytes.Buffer{}}

	out.Print([]string{"ID", "NAME"}, [][]string{{"1", "flow-a"}}, nil)

	got := buf.String()
	if !strings.Contains(got, "ID") || !strings.Contains(got, "flow-a") {
		t.Errorf("table output missing expected content: %q", got)
	}
}

func TestOutput_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	out := &Output{jsonMode: true, w: &buf, errW: &bytes.Buffer{}}

	out.Print(nil, nil, map[string]any{"id": "1"})

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["id"] != "1" {
		t.Errorf("decoded = %v, want id=1", decoded)
	}
}

func TestOutput_SuccessAndErrorGoToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	out := &Output{w: &stdout, errW: &stderr}

	out.Success("done")
	out.Error("oops")

	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "done") || !strings.Contains(stderr.String(), "oops") {
		t.Errorf("stderr missing expected messages: %q", stderr.String())
	}
}
