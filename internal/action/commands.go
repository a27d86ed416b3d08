package action

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// OpenFileRequest selects the file subsequent edit commands operate on.
type OpenFileRequest struct {
	// Path of the file to open, relative to the workspace root.
	Path string `json:"path"`
}

// OpenFile opens a file in the workspace session and returns its
// numbered content.
type OpenFile struct {
	ws Communicator
}

func NewOpenFile(ws Communicator) *OpenFile { return &OpenFile{ws: ws} }

func (a *OpenFile) Name() string { return "open_file" }

func (a *OpenFile) Execute(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req OpenFileRequest
	if err := decode(raw, &req); err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Path) == "" {
		return Response{}, fmt.Errorf("path is required")
	}
	return normalized(a.ws, "open "+req.Path), nil
}

// RunCommandRequest carries an arbitrary shell command for the workspace.
type RunCommandRequest struct {
	Command string `json:"command"`
}

// RunCommand executes a shell command inside the workspace directory.
type RunCommand struct {
	ws Communicator
}

func NewRunCommand(ws Communicator) *RunCommand { return &RunCommand{ws: ws} }

func (a *RunCommand) Name() string { return "run_command" }

func (a *RunCommand) Execute(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req RunCommandRequest
	if err := decode(raw, &req); err != nil {
		return Response{}, err
	}
	if strings.TrimSpace(req.Command) == "" {
		return Response{}, fmt.Errorf("command is required")
	}
	return normalized(a.ws, req.Command), nil
}

// SubmitPatchRequest has no fields; submitting always covers the whole
// working tree.
type SubmitPatchRequest struct{}

// SubmitPatch stages everything in the workspace and returns the
// cumulative patch for the run.
type SubmitPatch struct {
	ws Communicator
}

func NewSubmitPatch(ws Communicator) *SubmitPatch { return &SubmitPatch{ws: ws} }

func (a *SubmitPatch) Name() string { return "submit_patch" }

func (a *SubmitPatch) Execute(ctx context.Context, raw json.RawMessage) (Response, error) {
	return normalized(a.ws, "submit"), nil
}
