package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Session interprets the line-oriented command protocol used by tool
// actions. It keeps one piece of state between commands: the currently
// open file, which the edit command operates on.
//
// Recognized commands:
//
//	open <path>                          open a file for viewing/editing
//	edit <start>:<end> << end_of_edit    replace a line range of the open file
//	submit                               produce the cumulative patch
//
// Anything else is executed as a shell command in the workspace directory.
type Session struct {
	dir    string
	runner CommandRunner

	mu          sync.Mutex
	currentFile string
}

// NewSession creates a session bound to a workspace directory.
func NewSession(dir string, runner CommandRunner) *Session {
	return &Session{dir: dir, runner: runner}
}

// Communicate executes a single command and returns its raw output and
// return code. Callers are expected to normalize the pair via
// ProcessOutput before surfacing it.
func (s *Session) Communicate(command string) CmdResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(command)
	switch {
	case strings.HasPrefix(trimmed, "open "):
		return s.openFile(strings.TrimSpace(strings.TrimPrefix(trimmed, "open ")))
	case strings.HasPrefix(trimmed, "edit "):
		return s.edit(command)
	case trimmed == "submit":
		return s.submit()
	default:
		return s.shell(command)
	}
}

// CurrentFile returns the path of the file opened by the last successful
// open command, relative to the workspace directory.
func (s *Session) CurrentFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFile
}

func (s *Session) openFile(rel string) CmdResponse {
	if rel == "" {
		return CmdResponse{Output: "usage: open <path>", ReturnCode: 1}
	}

	abs := filepath.Join(s.dir, rel)
	data, err := os.ReadFile(abs)
	if err != nil {
		return CmdResponse{
			Output:     fmt.Sprintf("could not open file %s: %v", rel, err),
			ReturnCode: 1,
		}
	}

	s.currentFile = rel

	lines := splitLines(string(data))
	var b strings.Builder
	fmt.Fprintf(&b, "[File: %s (%d lines total)]\n", rel, len(lines))
	for i, line := range lines {
		fmt.Fprintf(&b, "%d:%s\n", i+1, line)
	}
	return CmdResponse{Output: b.String(), ReturnCode: 0}
}

func (s *Session) submit() CmdResponse {
	if out, code, err := s.runner.RunInDir(s.dir, "git", "add", "-A"); err != nil || code != 0 {
		return CmdResponse{
			Output:     fmt.Sprintf("git add failed: %s", firstNonEmpty(string(out), errString(err))),
			ReturnCode: nonZero(code),
		}
	}

	out, code, err := s.runner.RunInDir(s.dir, "git", "diff", "--cached")
	if err != nil {
		return CmdResponse{Output: fmt.Sprintf("git diff failed: %v", err), ReturnCode: 1}
	}
	return CmdResponse{Output: string(out), ReturnCode: code}
}

func (s *Session) shell(command string) CmdResponse {
	out, code, err := s.runner.RunInDir(s.dir, "bash", "-c", command)
	if err != nil {
		return CmdResponse{
			Output:     fmt.Sprintf("failed to execute command: %v", err),
			ReturnCode: 1,
		}
	}
	return CmdResponse{Output: string(out), ReturnCode: code}
}

// splitLines splits file content into lines without treating a trailing
// newline as an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func nonZero(code int) int {
	if code == 0 {
		return 1
	}
	return code
}
