package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// EditMarker delimits the replacement payload of an edit command. The
// command format is:
//
//	edit <start>:<end> << end_of_edit
//	<replacement text>
//	end_of_edit
//
// Start and end are 1-based inclusive line numbers into the currently
// open file.
const EditMarker = "end_of_edit"

var editHeaderPattern = regexp.MustCompile(`^edit\s+(\d+):(\d+)\s*<<\s*` + EditMarker + `$`)

// edit parses and applies an edit command against the currently open
// file. The file is checked for syntax errors after the edit; if the
// check fails the original content is restored and the diagnostics are
// returned with a non-zero code so the agent can correct the command.
func (s *Session) edit(command string) CmdResponse {
	if s.currentFile == "" {
		return CmdResponse{
			Output:     "no file open. Use the open command first.",
			ReturnCode: 1,
		}
	}

	start, end, replacement, err := parseEditCommand(command)
	if err != nil {
		return CmdResponse{Output: err.Error(), ReturnCode: 1}
	}

	abs := filepath.Join(s.dir, s.currentFile)
	original, err := os.ReadFile(abs)
	if err != nil {
		return CmdResponse{
			Output:     fmt.Sprintf("could not read %s: %v", s.currentFile, err),
			ReturnCode: 1,
		}
	}

	lines := splitLines(string(original))
	if start < 1 || end < start || end > len(lines) {
		return CmdResponse{
			Output: fmt.Sprintf(
				"invalid line range %d:%d (file has %d lines)", start, end, len(lines)),
			ReturnCode: 1,
		}
	}

	// Replacement text is applied exactly as supplied, indentation included.
	edited := make([]string, 0, len(lines))
	edited = append(edited, lines[:start-1]...)
	if replacement != "" {
		edited = append(edited, strings.Split(replacement, "\n")...)
	}
	edited = append(edited, lines[end:]...)

	content := strings.Join(edited, "\n") + "\n"
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return CmdResponse{
			Output:     fmt.Sprintf("could not write %s: %v", s.currentFile, err),
			ReturnCode: 1,
		}
	}

	if diag, ok := s.syntaxCheck(abs); !ok {
		// Roll back so a broken edit never lands.
		if err := os.WriteFile(abs, original, 0o644); err != nil {
			return CmdResponse{
				Output:     fmt.Sprintf("syntax check failed and rollback failed: %v", err),
				ReturnCode: 1,
			}
		}
		return CmdResponse{
			Output: fmt.Sprintf(
				"edit rejected, file has syntax errors after the change:\n%s\n"+
					"The edit was not applied. Fix the command and try again.", diag),
			ReturnCode: 1,
		}
	}

	return CmdResponse{
		Output:     fmt.Sprintf("edited %s, lines %d:%d replaced", s.currentFile, start, end),
		ReturnCode: 0,
	}
}

// parseEditCommand extracts the line range and replacement payload from
// the textual edit command.
func parseEditCommand(command string) (start, end int, replacement string, err error) {
	command = strings.TrimSpace(command)

	headerEnd := strings.Index(command, "\n")
	header := command
	body := ""
	if headerEnd >= 0 {
		header = command[:headerEnd]
		body = command[headerEnd+1:]
	}

	match := editHeaderPattern.FindStringSubmatch(strings.TrimSpace(header))
	if match == nil {
		return 0, 0, "", fmt.Errorf(
			"malformed edit command, expected: edit <start>:<end> << %s", EditMarker)
	}

	start, err = strconv.Atoi(match[1])
	if err != nil {
		return 0, 0, "", fmt.Errorf("invalid start line: %v", err)
	}
	end, err = strconv.Atoi(match[2])
	if err != nil {
		return 0, 0, "", fmt.Errorf("invalid end line: %v", err)
	}

	if !strings.HasSuffix(strings.TrimRight(body, "\n"), EditMarker) {
		return 0, 0, "", fmt.Errorf("edit payload missing closing %s marker", EditMarker)
	}
	body = strings.TrimRight(body, "\n")
	replacement = strings.TrimSuffix(body, EditMarker)
	replacement = strings.TrimSuffix(replacement, "\n")

	return start, end, replacement, nil
}

// syntaxCheck runs a language-appropriate parse check on the edited file.
// Returns diagnostics and false if the file no longer parses. Files in
// languages without a configured checker always pass.
func (s *Session) syntaxCheck(abs string) (string, bool) {
	var name string
	var args []string

	switch filepath.Ext(abs) {
	case ".go":
		// gofmt -e reports all syntax errors without rewriting the file.
		name, args = "gofmt", []string{"-e", "-l", abs}
	case ".py":
		name, args = "python3", []string{"-m", "py_compile", abs}
	default:
		return "", true
	}

	out, code, err := s.runner.RunInDir(s.dir, name, args...)
	if err != nil {
		// Checker unavailable; do not block the edit.
		return "", true
	}
	if code != 0 {
		return strings.TrimSpace(string(out)), false
	}
	return "", true
}
