package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/swe-crew/internal/history"
	"github.com/cexll/swe-crew/internal/workspace"
)

func main() {
	// 1. Validate required environment variables
	requiredEnv := []string{"WORKSPACE_DIR", "SESSION_ID"}
	for _, env := range requiredEnv {
		if os.Getenv(env) == "" {
			log.Fatalf("[MCP Workspace Server] Missing required environment variable: %s", env)
		}
	}

	workspaceDir := os.Getenv("WORKSPACE_DIR")
	sessionID := os.Getenv("SESSION_ID")
	sessionLog := os.Getenv("SESSION_LOG")

	log.Println("[MCP Workspace Server] Starting Workspace MCP Server v1.0.0")
	log.Printf("[MCP Workspace Server] Workspace: %s", workspaceDir)
	log.Printf("[MCP Workspace Server] Session: %s", sessionID)

	// 2. Attach to the workspace and the session log
	ws := workspace.Open(workspaceDir, nil)

	var sink history.Sink
	if sessionLog != "" {
		sink = history.NewFileSink(sessionLog)
		log.Printf("[MCP Workspace Server] Recording steps to %s", sessionLog)
	}

	// 3. Create MCP server and register the workspace tools
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "workspace-server",
		Version: "v1.0.0",
	}, nil)

	tools := newToolServer(ws, sink, sessionID)
	tools.register(server)

	// 4. Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("[MCP Workspace Server] Received shutdown signal")
		cancel()
	}()

	// 5. Serve on stdio
	log.Println("[MCP Workspace Server] Starting on stdio transport...")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("[MCP Workspace Server] Server error: %v", err)
	}
	log.Println("[MCP Workspace Server] Server stopped gracefully")
}
