package workspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Workspace is an isolated checkout directory where the agent's commands
// (edits, shell commands) are executed.
type Workspace struct {
	ID      string
	Dir     string
	session *Session
}

// Communicate submits a single textual command to the workspace and
// returns the normalized output and return code.
func (w *Workspace) Communicate(command string) CmdResponse {
	return w.session.Communicate(command)
}

// Manager creates and tracks workspaces under a root directory.
type Manager struct {
	root   string
	runner CommandRunner

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewManager creates a workspace manager rooted at dir. If dir is empty,
// a directory under the system temp dir is used.
func NewManager(dir string, runner CommandRunner) (*Manager, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "swe-crew-workspaces")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	if runner == nil {
		runner = &RealCommandRunner{}
	}
	return &Manager{
		root:       dir,
		runner:     runner,
		workspaces: make(map[string]*Workspace),
	}, nil
}

// Create provisions a new empty workspace and returns it.
func (m *Manager) Create() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace dir: %w", err)
	}

	ws := &Workspace{
		ID:      id,
		Dir:     dir,
		session: NewSession(dir, m.runner),
	}

	m.mu.Lock()
	m.workspaces[id] = ws
	m.mu.Unlock()

	log.Printf("[Workspace] Created workspace %s at %s", id, dir)
	return ws, nil
}

// Open attaches to an existing workspace directory without registering it
// in the manager. Used by the out-of-process tool server, which receives
// the directory via environment rather than sharing manager state.
func Open(dir string, runner CommandRunner) *Workspace {
	if runner == nil {
		runner = &RealCommandRunner{}
	}
	return &Workspace{
		ID:      filepath.Base(dir),
		Dir:     dir,
		session: NewSession(dir, runner),
	}
}

// Remove deletes a workspace directory and forgets it.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := os.RemoveAll(ws.Dir); err != nil {
		log.Printf("[Workspace] Warning: failed to cleanup %s: %v", ws.Dir, err)
	}
}
