// Package runstore keeps the in-memory record of issue-fixing runs.
package runstore

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one issue-fixing attempt sequence tracked by the service.
type Run struct {
	ID         string    `json:"id"`
	Repo       string    `json:"repo"`
	IssueID    string    `json:"issue_id"`
	BaseCommit string    `json:"base_commit"`
	IssueDesc  string    `json:"issue_desc,omitempty"`
	Status     RunStatus `json:"status"`
	Attempt    int       `json:"attempt"`

	// Filled in when the run completes.
	WorkspaceID string `json:"workspace_id,omitempty"`
	Summary     string `json:"summary,omitempty"`
	LogPath     string `json:"log_path,omitempty"`
	ErrorMsg    string `json:"error,omitempty"`

	Logs      []LogEntry `json:"logs"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LogEntry is a single service-level log line attached to a run.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // info, error, success
	Message   string    `json:"message"`
}

// Key identifies the issue a run targets; at most one run per key is
// executed at a time.
func (r *Run) Key() string {
	return r.Repo + "#" + r.IssueID
}

// clone returns a private copy safe to hand out of the store's lock.
func (r *Run) clone() *Run {
	dup := *r
	dup.Logs = append([]LogEntry(nil), r.Logs...)
	return &dup
}

// Store is a thread-safe in-memory run registry. It owns the canonical
// record of every run: reads return snapshots, and all mutations go
// through store methods.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string]*Run)}
}

// Create registers a new run. The ID must be unique. The store keeps its
// own copy; the caller's run is normalized but not retained.
func (s *Store) Create(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run with ID %s already exists", run.ID)
	}

	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = StatusPending
	}
	if run.Logs == nil {
		run.Logs = []LogEntry{}
	}

	s.runs[run.ID] = run.clone()
	return nil
}

// Get retrieves a snapshot of a run by ID.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[id]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	return run.clone(), nil
}

// List returns snapshots of all runs, newest first.
func (s *Store) List() []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run.clone())
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// UpdateStatus moves a run to a new lifecycle state.
func (s *Store) UpdateStatus(id string, status RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}
	run.Status = status
	run.UpdatedAt = time.Now()
	return nil
}

// SetAttempt records which dispatch attempt is executing the run.
func (s *Store) SetAttempt(id string, attempt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}
	run.Attempt = attempt
	run.UpdatedAt = time.Now()
	return nil
}

// AppendLog attaches a service-level log line to a run.
func (s *Store) AppendLog(id, level, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}
	run.Logs = append(run.Logs, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	run.UpdatedAt = time.Now()
	return nil
}

// SetError records a failure message.
func (s *Store) SetError(id, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}
	run.ErrorMsg = errMsg
	run.UpdatedAt = time.Now()
	return nil
}

// SetResult records what a completed run produced.
func (s *Store) SetResult(id, workspaceID, summary, logPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, exists := s.runs[id]
	if !exists {
		return fmt.Errorf("run not found: %s", id)
	}
	run.WorkspaceID = workspaceID
	run.Summary = summary
	run.LogPath = logPath
	run.UpdatedAt = time.Now()
	return nil
}
