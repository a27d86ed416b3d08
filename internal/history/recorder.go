// Package history keeps the ordered record of all action invocations and
// their outcomes for one issue-fixing run, and serializes it to a
// timestamped artifact at run end.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Step is a single entry in a session log: either a tool invocation
// (agent_action + request + tool_output) or a final agent answer
// (agent_action "agent_finish" + agent_output).
type Step struct {
	AgentAction string          `json:"agent_action"`
	Request     json.RawMessage `json:"request,omitempty"`
	ToolOutput  string          `json:"tool_output,omitempty"`
	ReturnCode  int             `json:"return_code,omitempty"`
	AgentOutput string          `json:"agent_output,omitempty"`
}

// AgentFinishAction marks the closing step of an agent's task.
const AgentFinishAction = "agent_finish"

// Sink receives steps in strict call order for a session.
type Sink interface {
	Append(sessionID string, step Step)
}

// Recorder is the in-memory session log: an append-only mapping from a
// session identifier to its ordered step sequence.
type Recorder struct {
	mu       sync.Mutex
	sessions map[string][]Step
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{sessions: make(map[string][]Step)}
}

// Append adds a step to the end of a session's log.
func (r *Recorder) Append(sessionID string, step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], step)
}

// Steps returns a copy of the ordered log for a session.
func (r *Recorder) Steps(sessionID string) []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := r.sessions[sessionID]
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Save serializes the full session map once to a timestamped JSON file in
// dir and returns the file path. The filename carries second resolution
// tied to the save time, so reruns land in distinct artifacts.
func (r *Recorder) Save(dir string) (string, error) {
	r.mu.Lock()
	blob, err := json.MarshalIndent(r.sessions, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to marshal session logs: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create logs dir: %w", err)
	}

	name := fmt.Sprintf("agent_logs_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("failed to write session logs: %w", err)
	}
	return path, nil
}
