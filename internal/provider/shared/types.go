// Package shared holds the request/response types, CLI invocation and
// response parsing common to all agent execution backends.
package shared

// CodeRequest describes one task execution for a backend.
type CodeRequest struct {
	// Prompt is the fully formatted task prompt (role, goal, backstory
	// and task description already substituted).
	Prompt string

	// RepoPath is the working directory the CLI runs in.
	RepoPath string

	// ConfigOverrides are backend CLI configuration overrides, used to
	// register the workspace MCP tool server.
	ConfigOverrides []string

	// ExtraEnv is appended to the CLI process environment, carrying the
	// workspace and session identifiers for the tool server.
	ExtraEnv []string
}

// CodeResponse carries a backend's final answer.
type CodeResponse struct {
	// Summary is the distilled outcome of the task.
	Summary string

	// Patch holds a unified diff when the backend reported one.
	Patch string

	// Raw is the unparsed CLI output, kept for the session log.
	Raw string
}
