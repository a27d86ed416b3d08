package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseEditCommand(t *testing.T) {
	tests := []struct {
		name      string
		command   string
		wantStart int
		wantEnd   int
		wantText  string
		wantErr   bool
	}{
		{
			name:      "simple replacement",
			command:   "edit 2:4 << end_of_edit\n    return nil\nend_of_edit",
			wantStart: 2,
			wantEnd:   4,
			wantText:  "    return nil",
		},
		{
			name:      "indentation preserved exactly",
			command:   "edit 1:1 << end_of_edit\n        print(x)\nend_of_edit",
			wantStart: 1,
			wantEnd:   1,
			wantText:  "        print(x)",
		},
		{
			name:      "multi-line payload",
			command:   "edit 10:12 << end_of_edit\nif err != nil {\n\treturn err\n}\nend_of_edit",
			wantStart: 10,
			wantEnd:   12,
			wantText:  "if err != nil {\n\treturn err\n}",
		},
		{
			name:    "missing closing marker",
			command: "edit 2:4 << end_of_edit\ncode",
			wantErr: true,
		},
		{
			name:    "malformed header",
			command: "edit 2-4 << end_of_edit\ncode\nend_of_edit",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, text, err := parseEditCommand(tt.command)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("range = %d:%d, want %d:%d", start, end, tt.wantStart, tt.wantEnd)
			}
			if text != tt.wantText {
				t.Errorf("replacement = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestEditReplacesLineRange(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"config.txt": "alpha\nbeta\ngamma\ndelta\n",
	}, nil)

	if resp := s.Communicate("open config.txt"); resp.ReturnCode != 0 {
		t.Fatalf("open failed: %s", resp.Output)
	}

	resp := s.Communicate("edit 2:3 << end_of_edit\nBETA\nGAMMA\nend_of_edit")
	if resp.ReturnCode != 0 {
		t.Fatalf("edit failed: %s", resp.Output)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "config.txt"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := "alpha\nBETA\nGAMMA\ndelta\n"
	if string(data) != want {
		t.Errorf("content = %q, want %q", string(data), want)
	}
}

func TestEditRequiresOpenFile(t *testing.T) {
	s := newTestSession(t, nil, nil)

	resp := s.Communicate("edit 1:1 << end_of_edit\nx\nend_of_edit")
	if resp.ReturnCode == 0 {
		t.Fatal("expected failure when no file is open")
	}
	if !strings.Contains(resp.Output, "no file open") {
		t.Errorf("unexpected diagnostic: %q", resp.Output)
	}
}

func TestEditRejectsOutOfBoundsRange(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"short.txt": "one\ntwo\n",
	}, nil)
	s.Communicate("open short.txt")

	tests := []struct {
		name    string
		command string
	}{
		{"end beyond file", "edit 1:9 << end_of_edit\nx\nend_of_edit"},
		{"start below one", "edit 0:1 << end_of_edit\nx\nend_of_edit"},
		{"end before start", "edit 2:1 << end_of_edit\nx\nend_of_edit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.Communicate(tt.command)
			if resp.ReturnCode == 0 {
				t.Fatalf("expected rejection, got success: %s", resp.Output)
			}
		})
	}

	// File untouched after rejected edits.
	data, _ := os.ReadFile(filepath.Join(s.dir, "short.txt"))
	if string(data) != "one\ntwo\n" {
		t.Errorf("file modified by rejected edit: %q", string(data))
	}
}

func TestEditRollsBackOnSyntaxError(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunInDirFunc = func(dir, name string, args ...string) ([]byte, int, error) {
		if name == "gofmt" {
			return []byte("main.go:2:1: expected declaration, found BROKEN"), 2, nil
		}
		return nil, 0, nil
	}

	original := "package main\n\nfunc main() {}\n"
	s := newTestSession(t, map[string]string{"main.go": original}, runner)
	s.Communicate("open main.go")

	resp := s.Communicate("edit 3:3 << end_of_edit\nBROKEN {\nend_of_edit")
	if resp.ReturnCode == 0 {
		t.Fatalf("expected syntax rejection, got: %s", resp.Output)
	}
	if !strings.Contains(resp.Output, "syntax errors") {
		t.Errorf("diagnostic missing, got: %q", resp.Output)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, "main.go"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != original {
		t.Errorf("file not rolled back: %q", string(data))
	}
}

func TestEditSkipsCheckerForUnknownExtensions(t *testing.T) {
	runner := NewMockCommandRunner()
	s := newTestSession(t, map[string]string{"notes.md": "# notes\nbody\n"}, runner)
	s.Communicate("open notes.md")

	resp := s.Communicate("edit 2:2 << end_of_edit\nnew body\nend_of_edit")
	if resp.ReturnCode != 0 {
		t.Fatalf("edit failed: %s", resp.Output)
	}
	if len(runner.Calls) != 0 {
		t.Errorf("expected no checker invocation for .md, got %+v", runner.Calls)
	}
}
