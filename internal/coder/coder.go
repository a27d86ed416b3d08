// Package coder drives one issue-fixing run end to end: select the LLM
// backend, provision a workspace, clone the repository, hand the coder
// (and optionally reviewer) agent to the crew engine, and persist the
// session log.
package coder

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/cexll/swe-crew/internal/config"
	"github.com/cexll/swe-crew/internal/crew"
	"github.com/cexll/swe-crew/internal/github"
	"github.com/cexll/swe-crew/internal/history"
	"github.com/cexll/swe-crew/internal/prompt"
	"github.com/cexll/swe-crew/internal/provider"
	"github.com/cexll/swe-crew/internal/toolconfig"
	"github.com/cexll/swe-crew/internal/workspace"
)

// sessionLogName is the per-run JSONL file the tool server appends to
// inside the workspace.
const sessionLogName = "session.jsonl"

// IssueConfig identifies the issue a run should fix. Immutable once
// constructed.
type IssueConfig struct {
	RepoName     string // "owner/repo"
	IssueID      string
	BaseCommitID string // branch or commit ref the fix starts from
	IssueDesc    string // optional; fetched from GitHub when empty
}

// RunResult is what a completed run produced.
type RunResult struct {
	WorkspaceID string
	RepoDir     string
	Summary     string
	LogPath     string
}

// CoderAgent orchestrates a single run. It is not safe for concurrent
// runs; the dispatcher creates one per attempt.
type CoderAgent struct {
	cfg        *config.Config
	issue      IssueConfig
	workspaces *workspace.Manager
	auth       github.AuthProvider
	fetcher    github.IssueFetcher

	// Seams for tests.
	newLLM     func(config.ModelEnv) (provider.Provider, error)
	cloneRepo  func(repo, branch, token, dest string) error
	buildTools func(toolconfig.Options) (*toolconfig.ToolServerConfig, error)
}

// New validates the issue configuration and prepares an agent. A missing
// issue identifier fails here, before any workspace or network call.
func New(cfg *config.Config, issue IssueConfig) (*CoderAgent, error) {
	if strings.TrimSpace(issue.IssueID) == "" {
		return nil, fmt.Errorf("no issue configuration found: issue id is required")
	}
	if strings.TrimSpace(issue.RepoName) == "" {
		return nil, fmt.Errorf("no issue configuration found: repo name is required")
	}

	manager, err := workspace.NewManager(cfg.WorkspacesRoot, nil)
	if err != nil {
		return nil, err
	}

	agent := &CoderAgent{
		cfg:        cfg,
		issue:      issue,
		workspaces: manager,
		newLLM:     provider.New,
		cloneRepo:  github.CloneInto,
		buildTools: toolconfig.Build,
	}
	if cfg.HasGitHubApp() {
		auth := &github.AppAuth{AppID: cfg.GitHubAppID, PrivateKey: cfg.GitHubPrivateKey}
		agent.auth = auth
		agent.fetcher = github.NewAPIIssueFetcher(auth)
	}
	return agent, nil
}

// Run executes the full sequence. Any failed step aborts the run and no
// session log artifact is written.
func (a *CoderAgent) Run(ctx context.Context) (*RunResult, error) {
	llm, err := a.newLLM(a.cfg.ModelEnv)
	if err != nil {
		return nil, err
	}
	log.Printf("[Coder] Using %s backend for issue %s in %s", llm.Name(), a.issue.IssueID, a.issue.RepoName)

	ws, err := a.workspaces.Create()
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	// A failed run writes no artifact; its workspace goes with it.
	completed := false
	defer func() {
		if !completed {
			a.workspaces.Remove(ws.ID)
		}
	}()

	repoNameDir := prompt.RepoNameDir(a.issue.RepoName)
	dest := filepath.Join(ws.Dir, strings.TrimPrefix(repoNameDir, "/"))
	if err := a.cloneRepo(a.issue.RepoName, a.issue.BaseCommitID, a.cloneToken(), dest); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", a.issue.RepoName, err)
	}
	log.Printf("[Coder] Cloned %s@%s into %s", a.issue.RepoName, a.issue.BaseCommitID, dest)

	issueDesc, err := a.issueDescription(ctx)
	if err != nil {
		return nil, err
	}

	// The tool server's session is rooted at the repo checkout so git and
	// shell commands run inside the repository. The step log lives one
	// level up, out of the diff.
	sessionLog := filepath.Join(ws.Dir, sessionLogName)
	tools, err := a.buildTools(toolconfig.Options{
		WorkspaceDir:   dest,
		SessionID:      a.issue.IssueID,
		SessionLogPath: sessionLog,
	})
	if err != nil {
		return nil, err
	}

	tasks, err := a.buildTasks(llm, ws.ID, dest, repoNameDir, issueDesc, tools, history.NewFileSink(sessionLog))
	if err != nil {
		return nil, err
	}

	summary, err := crew.New(tasks...).Kickoff(ctx)
	if err != nil {
		return nil, err
	}

	logPath, err := a.saveHistory(sessionLog)
	if err != nil {
		return nil, err
	}
	log.Printf("[Coder] Run for issue %s complete, session log at %s", a.issue.IssueID, logPath)

	completed = true
	return &RunResult{
		WorkspaceID: ws.ID,
		RepoDir:     dest,
		Summary:     summary,
		LogPath:     logPath,
	}, nil
}

// cloneToken fetches a GitHub App installation token when an app is
// configured. Public repositories clone without one, so a token failure
// only logs a warning.
func (a *CoderAgent) cloneToken() string {
	if a.auth == nil {
		return ""
	}
	token, err := a.auth.GetInstallationToken(a.issue.RepoName)
	if err != nil {
		log.Printf("[Coder] Warning: installation token unavailable, cloning unauthenticated: %v", err)
		return ""
	}
	return token.Token
}

// issueDescription returns the caller-supplied issue text, fetching it
// from GitHub when it was left empty.
func (a *CoderAgent) issueDescription(ctx context.Context) (string, error) {
	if strings.TrimSpace(a.issue.IssueDesc) != "" {
		return a.issue.IssueDesc, nil
	}
	if a.fetcher == nil {
		return "", fmt.Errorf("issue description is empty and no GitHub App is configured to fetch it")
	}
	details, err := a.fetcher.FetchIssue(ctx, a.issue.RepoName, a.issue.IssueID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch issue %s: %w", a.issue.IssueID, err)
	}
	if details.Body == "" {
		return details.Title, nil
	}
	return details.Title + "\n\n" + details.Body, nil
}

// buildTasks constructs the coder task, plus the review task when the
// review stage is enabled. Each task's final output is appended to the
// session step log as it completes, so finishes interleave with the tool
// steps in call order.
func (a *CoderAgent) buildTasks(llm provider.Provider, workspaceID, workDir, repoNameDir, issueDesc string, tools *toolconfig.ToolServerConfig, sink history.Sink) ([]*crew.Task, error) {
	backstoryData := prompt.BackstoryData{
		WorkspaceID: workspaceID,
		RepoName:    a.issue.RepoName,
		RepoNameDir: repoNameDir,
		BaseCommit:  a.issue.BaseCommitID,
	}
	taskData := prompt.TaskData{
		Issue:       issueDesc,
		IssueID:     a.issue.IssueID,
		RepoNameDir: repoNameDir,
	}

	record := func(output string) {
		sink.Append(a.issue.IssueID, history.Step{
			AgentAction: history.AgentFinishAction,
			AgentOutput: output,
		})
	}

	coderBackstory, err := prompt.CoderBackstory(backstoryData)
	if err != nil {
		return nil, err
	}
	coderTask, err := prompt.CoderTask(taskData)
	if err != nil {
		return nil, err
	}

	coderAgent := &crew.Agent{
		Role:            prompt.CoderRole,
		Goal:            prompt.CoderGoal,
		Backstory:       coderBackstory,
		LLM:             llm,
		Memory:          true,
		WorkDir:         workDir,
		ConfigOverrides: tools.ConfigOverrides,
		ExtraEnv:        tools.Env,
		StepCallback:    record,
	}
	coding := &crew.Task{
		Description:    coderTask,
		ExpectedOutput: prompt.CoderExpectedOutput,
		Agent:          coderAgent,
	}
	tasks := []*crew.Task{coding}

	if a.cfg.ReviewEnabled {
		reviewerBackstory, err := prompt.ReviewerBackstory(backstoryData)
		if err != nil {
			return nil, err
		}
		reviewTask, err := prompt.ReviewerTask(taskData)
		if err != nil {
			return nil, err
		}
		reviewer := &crew.Agent{
			Role:            prompt.ReviewerRole,
			Goal:            prompt.ReviewerGoal,
			Backstory:       reviewerBackstory,
			LLM:             llm,
			Memory:          true,
			WorkDir:         workDir,
			ConfigOverrides: tools.ConfigOverrides,
			ExtraEnv:        tools.Env,
			StepCallback:    record,
		}
		tasks = append(tasks, &crew.Task{
			Description:    reviewTask,
			ExpectedOutput: prompt.ReviewerExpectedOutput,
			Agent:          reviewer,
			Context:        []*crew.Task{coding},
		})
	}

	return tasks, nil
}

// saveHistory reads the session step log, which already holds tool steps
// and task finishes in call order, and writes the artifact once.
func (a *CoderAgent) saveHistory(sessionLog string) (string, error) {
	recorder := history.NewRecorder()
	if err := recorder.MergeFile(sessionLog); err != nil {
		return "", fmt.Errorf("failed to read session log: %w", err)
	}
	return recorder.Save(a.cfg.AgentLogsDir)
}
