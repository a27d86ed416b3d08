// Package runner executes one attempt of an issue-fixing run and keeps
// the run record in the store up to date.
package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/cexll/swe-crew/internal/coder"
	"github.com/cexll/swe-crew/internal/concurrency"
	"github.com/cexll/swe-crew/internal/config"
	"github.com/cexll/swe-crew/internal/dispatcher"
	"github.com/cexll/swe-crew/internal/runstore"
)

// codeAgent is the slice of the orchestrator the runner drives.
type codeAgent interface {
	Run(ctx context.Context) (*coder.RunResult, error)
}

// Runner implements dispatcher.RunExecutor on top of the coder orchestrator.
type Runner struct {
	cfg   *config.Config
	store *runstore.Store
	locks *concurrency.Manager

	maxAttempts int

	newAgent func(cfg *config.Config, issue coder.IssueConfig) (codeAgent, error)
}

// New creates a runner backed by the real orchestrator. The locks manager
// is the one the API handler acquires admission on; the runner releases a
// run's key once no further attempt will execute it.
func New(cfg *config.Config, store *runstore.Store, locks *concurrency.Manager) *Runner {
	maxAttempts := cfg.DispatcherMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Runner{
		cfg:         cfg,
		store:       store,
		locks:       locks,
		maxAttempts: maxAttempts,
		newAgent: func(cfg *config.Config, issue coder.IssueConfig) (codeAgent, error) {
			return coder.New(cfg, issue)
		},
	}
}

// Execute performs a single attempt. A construction failure is a
// configuration problem, so it is marked non-retryable; a failure during
// the run itself is left retryable for the dispatcher's backoff.
func (r *Runner) Execute(ctx context.Context, run *runstore.Run) error {
	_ = r.store.SetAttempt(run.ID, run.Attempt)
	_ = r.store.UpdateStatus(run.ID, runstore.StatusRunning)
	_ = r.store.AppendLog(run.ID, "info", fmt.Sprintf("attempt %d started for %s", run.Attempt, run.Key()))

	agent, err := r.newAgent(r.cfg, coder.IssueConfig{
		RepoName:     run.Repo,
		IssueID:      run.IssueID,
		BaseCommitID: run.BaseCommit,
		IssueDesc:    run.IssueDesc,
	})
	if err != nil {
		r.fail(run, err)
		r.release(run)
		return dispatcher.NonRetryable(err)
	}

	result, err := agent.Run(ctx)
	if err != nil {
		r.fail(run, err)
		if run.Attempt >= r.maxAttempts {
			r.release(run)
		}
		return err
	}

	_ = r.store.SetResult(run.ID, result.WorkspaceID, result.Summary, result.LogPath)
	_ = r.store.AppendLog(run.ID, "success", "run completed, session log at "+result.LogPath)
	_ = r.store.UpdateStatus(run.ID, runstore.StatusCompleted)
	r.release(run)
	log.Printf("[Runner] Run %s completed on attempt %d", run.Key(), run.Attempt)
	return nil
}

func (r *Runner) fail(run *runstore.Run, err error) {
	_ = r.store.SetError(run.ID, err.Error())
	_ = r.store.AppendLog(run.ID, "error", err.Error())
	_ = r.store.UpdateStatus(run.ID, runstore.StatusFailed)
}

// release frees the issue key so a new run for the same issue can be
// submitted. Called once the run reached a terminal state with no
// further retry scheduled.
func (r *Runner) release(run *runstore.Run) {
	if r.locks != nil {
		r.locks.Release(run.Key())
	}
}
