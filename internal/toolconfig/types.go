package toolconfig

// Options identifies one run's workspace for the tool server.
//
// The agent CLI spawns the workspace tool server as a stdio MCP server;
// these values are handed to it through its process environment so that
// every tool call lands in the right clone and session log.
type Options struct {
	// ServerCommand is the tool server binary. Defaults to
	// "mcp-workspace-server" when empty.
	ServerCommand string

	// WorkspaceDir is the absolute path the tool session is rooted at:
	// the repository checkout, so that file paths resolve against the
	// repo and git commands run inside it.
	WorkspaceDir string

	// SessionID names the run inside the session log.
	SessionID string

	// SessionLogPath is the JSONL file the tool server appends recorded
	// steps to.
	SessionLogPath string
}

// ToolServerConfig is the result of Build: the agent CLI config overrides
// that register the tool server, plus environment additions for the agent
// CLI process itself.
type ToolServerConfig struct {
	ConfigOverrides []string
	Env             []string
}
