package workspace

import (
	"errors"
	"os/exec"
)

// CommandRunner executes shell commands inside a workspace directory.
// The abstraction allows command execution to be mocked in tests.
type CommandRunner interface {
	// RunInDir executes a command in dir and returns the combined
	// output together with the process exit code. A non-nil error is
	// reserved for failures to start the process at all; a command
	// that ran and exited non-zero returns (output, code, nil).
	RunInDir(dir, name string, args ...string) ([]byte, int, error)
}

// RealCommandRunner is the production implementation using os/exec
type RealCommandRunner struct{}

// RunInDir executes a command in a specific directory
func (r *RealCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, int, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The command ran and failed; surface its exit code.
			return output, exitErr.ExitCode(), nil
		}
		return output, 1, err
	}
	return output, 0, nil
}

// MockCommandRunner is a test implementation that returns predefined responses
type MockCommandRunner struct {
	// RunInDirFunc is called when RunInDir is invoked
	RunInDirFunc func(dir, name string, args ...string) ([]byte, int, error)

	// Calls tracks all command invocations
	Calls []MockCall
}

// MockCall represents a single command invocation
type MockCall struct {
	Name string
	Args []string
	Dir  string
}

// RunInDir executes the mock function with directory context
func (m *MockCommandRunner) RunInDir(dir, name string, args ...string) ([]byte, int, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args, Dir: dir})

	if m.RunInDirFunc != nil {
		return m.RunInDirFunc(dir, name, args...)
	}

	return []byte(""), 0, nil
}

// NewMockCommandRunner creates a new mock with default behavior
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Calls: make([]MockCall, 0),
	}
}
