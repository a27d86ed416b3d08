package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cexll/swe-crew/internal/action"
	"github.com/cexll/swe-crew/internal/history"
	"github.com/cexll/swe-crew/internal/workspace"
)

// toolServer exposes the workspace actions as MCP tools. Every action is
// wrapped with the session recorder so the orchestrator can reconstruct
// the full step sequence after the run.
type toolServer struct {
	edit   action.Action
	open   action.Action
	run    action.Action
	submit action.Action
}

func newToolServer(ws *workspace.Workspace, sink history.Sink, sessionID string) *toolServer {
	wrap := func(a action.Action) action.Action {
		if sink == nil {
			return a
		}
		return history.Recorded(a, sink, sessionID)
	}
	return &toolServer{
		edit:   wrap(action.NewEditFile(ws)),
		open:   wrap(action.NewOpenFile(ws)),
		run:    wrap(action.NewRunCommand(ws)),
		submit: wrap(action.NewSubmitPatch(ws)),
	}
}

func (s *toolServer) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "edit_file",
		Description: "Replace a line range in the currently open file with new text. Line numbers are 1-based and inclusive; the replacement text is applied verbatim, including indentation.",
	}, s.HandleEditFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "open_file",
		Description: "Open a file in the workspace and show its numbered contents. Subsequent edit_file calls apply to this file.",
	}, s.HandleOpenFile)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_command",
		Description: "Run a shell command in the workspace and return its output and exit code.",
	}, s.HandleRunCommand)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "submit_patch",
		Description: "Stage all changes in the repository and return the resulting git diff.",
	}, s.HandleSubmitPatch)
	log.Println("[MCP Workspace Server] Registered tools: edit_file, open_file, run_command, submit_patch")
}

// EditFileParams mirrors the edit_file action request schema.
type EditFileParams struct {
	StartLine       int    `json:"start_line" jsonschema:"1-based first line of the range to replace"`
	EndLine         int    `json:"end_line" jsonschema:"1-based last line of the range to replace, inclusive"`
	ReplacementText string `json:"replacement_text" jsonschema:"literal replacement text, indentation preserved"`
}

// OpenFileParams mirrors the open_file action request schema.
type OpenFileParams struct {
	Path string `json:"path" jsonschema:"file path relative to the workspace root"`
}

// RunCommandParams mirrors the run_command action request schema.
type RunCommandParams struct {
	Command string `json:"command" jsonschema:"shell command to run in the workspace"`
}

// SubmitPatchParams mirrors the submit_patch action request schema.
type SubmitPatchParams struct{}

func (s *toolServer) HandleEditFile(ctx context.Context, req *mcp.CallToolRequest, params EditFileParams) (*mcp.CallToolResult, any, error) {
	return dispatch(ctx, s.edit, params)
}

func (s *toolServer) HandleOpenFile(ctx context.Context, req *mcp.CallToolRequest, params OpenFileParams) (*mcp.CallToolResult, any, error) {
	return dispatch(ctx, s.open, params)
}

func (s *toolServer) HandleRunCommand(ctx context.Context, req *mcp.CallToolRequest, params RunCommandParams) (*mcp.CallToolResult, any, error) {
	return dispatch(ctx, s.run, params)
}

func (s *toolServer) HandleSubmitPatch(ctx context.Context, req *mcp.CallToolRequest, params SubmitPatchParams) (*mcp.CallToolResult, any, error) {
	return dispatch(ctx, s.submit, params)
}

// dispatch funnels a typed tool call through the action contract. A
// request the action rejects before reaching the workspace surfaces as a
// protocol error; a workspace failure comes back as an error result with
// the diagnostics preserved so the agent can correct its command.
func dispatch(ctx context.Context, a action.Action, params any) (*mcp.CallToolResult, any, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, nil, err
	}

	resp, err := a.Execute(ctx, raw)
	if err != nil {
		log.Printf("[MCP Workspace Server] %s rejected: %v", a.Name(), err)
		return nil, nil, err
	}

	if resp.ReturnCode != 0 {
		log.Printf("[MCP Workspace Server] %s failed with code %d", a.Name(), resp.ReturnCode)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: resp.Output},
		},
		IsError: resp.ReturnCode != 0,
	}, nil, nil
}
