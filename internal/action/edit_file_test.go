package action

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cexll/swe-crew/internal/workspace"
)

// fakeChannel records commands and plays back a canned response.
type fakeChannel struct {
	commands []string
	resp     workspace.CmdResponse
}

func (f *fakeChannel) Communicate(command string) workspace.CmdResponse {
	f.commands = append(f.commands, command)
	return f.resp
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return raw
}

func TestBuildEditCommand(t *testing.T) {
	tests := []struct {
		name string
		req  EditFileRequest
		want string
	}{
		{
			name: "single line with leading whitespace preserved",
			req:  EditFileRequest{StartLine: 5, EndLine: 5, ReplacementText: "        print(x)"},
			want: "edit 5:5 << end_of_edit\n        print(x)\nend_of_edit",
		},
		{
			name: "multi-line replacement",
			req:  EditFileRequest{StartLine: 12, EndLine: 40, ReplacementText: "def f():\n    return 1"},
			want: "edit 12:40 << end_of_edit\ndef f():\n    return 1\nend_of_edit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildEditCommand(tt.req); got != tt.want {
				t.Errorf("command = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEditFileExecute(t *testing.T) {
	ch := &fakeChannel{resp: workspace.CmdResponse{Output: "edited main.py, lines 2:3 replaced", ReturnCode: 0}}
	a := NewEditFile(ch)

	resp, err := a.Execute(context.Background(), mustMarshal(t, EditFileRequest{
		StartLine:       2,
		EndLine:         3,
		ReplacementText: "    x = 1",
	}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.ReturnCode != 0 {
		t.Errorf("return code = %d, want 0", resp.ReturnCode)
	}

	if len(ch.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(ch.commands))
	}
	cmd := ch.commands[0]
	if !strings.Contains(cmd, "edit 2:3") {
		t.Errorf("command missing line range: %q", cmd)
	}
	if !strings.Contains(cmd, "    x = 1") {
		t.Errorf("command missing replacement with indentation: %q", cmd)
	}
}

func TestEditFileExecuteValidation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"start line below one", `{"start_line":0,"end_line":3,"replacement_text":"x"}`},
		{"end before start", `{"start_line":5,"end_line":2,"replacement_text":"x"}`},
		{"malformed json", `{"start_line":"two"}`},
		{"empty request", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			a := NewEditFile(ch)
			if _, err := a.Execute(context.Background(), json.RawMessage(tt.raw)); err == nil {
				t.Fatal("expected validation error")
			}
			// Validation failures must never reach the workspace.
			if len(ch.commands) != 0 {
				t.Errorf("workspace called despite invalid request: %v", ch.commands)
			}
		})
	}
}

func TestEditFileFailureSurfacesDiagnostics(t *testing.T) {
	ch := &fakeChannel{resp: workspace.CmdResponse{
		Output:     "edit rejected, file has syntax errors after the change",
		ReturnCode: 1,
	}}
	a := NewEditFile(ch)

	resp, err := a.Execute(context.Background(), mustMarshal(t, EditFileRequest{
		StartLine: 1, EndLine: 1, ReplacementText: "broken(",
	}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.ReturnCode == 0 {
		t.Fatal("expected failure return code")
	}
	if !strings.Contains(resp.Output, "syntax errors") {
		t.Errorf("diagnostics not preserved: %q", resp.Output)
	}
}

func TestEditFileNormalizesEmptyOutput(t *testing.T) {
	ch := &fakeChannel{resp: workspace.CmdResponse{Output: "", ReturnCode: 0}}
	a := NewEditFile(ch)

	resp, err := a.Execute(context.Background(), mustMarshal(t, EditFileRequest{
		StartLine: 1, EndLine: 1, ReplacementText: "x",
	}))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if resp.Output != workspace.NoOutputSentinel {
		t.Errorf("output = %q, want sentinel", resp.Output)
	}
}
