// Package toolconfig builds the agent CLI configuration that exposes the
// workspace tools to the model as an MCP server.
package toolconfig

import (
	"fmt"
	"log"
	"os/exec"
)

// DefaultServerCommand is the workspace tool server binary looked up on PATH.
const DefaultServerCommand = "mcp-workspace-server"

var lookPath = exec.LookPath

// Build returns the config overrides and environment additions that register
// the workspace tool server with the agent CLI. The overrides use the CLI's
// TOML dotted-key syntax, one key per entry, ready to be passed as repeated
// -c flags.
func Build(opts Options) (*ToolServerConfig, error) {
	if opts.WorkspaceDir == "" {
		return nil, fmt.Errorf("workspace dir is required")
	}
	if opts.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	command := opts.ServerCommand
	if command == "" {
		command = DefaultServerCommand
	}
	if _, err := lookPath(command); err != nil {
		return nil, fmt.Errorf("tool server %q not found in PATH: %w", command, err)
	}

	env := fmt.Sprintf("{ WORKSPACE_DIR = %q, SESSION_ID = %q", opts.WorkspaceDir, opts.SessionID)
	if opts.SessionLogPath != "" {
		env += fmt.Sprintf(", SESSION_LOG = %q", opts.SessionLogPath)
	}
	env += " }"

	cfg := &ToolServerConfig{
		ConfigOverrides: []string{
			fmt.Sprintf("mcp_servers.workspace.command=%q", command),
			"mcp_servers.workspace.env=" + env,
		},
		// Also exported on the CLI process itself: spawned servers inherit
		// it, which covers CLIs that ignore per-server env tables.
		Env: []string{
			"WORKSPACE_DIR=" + opts.WorkspaceDir,
			"SESSION_ID=" + opts.SessionID,
		},
	}
	if opts.SessionLogPath != "" {
		cfg.Env = append(cfg.Env, "SESSION_LOG="+opts.SessionLogPath)
	}
	log.Printf("[ToolConfig] Registered workspace tool server %s (workspace: %s)", command, opts.WorkspaceDir)
	return cfg, nil
}
