package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cexll/swe-crew/internal/workspace"
)

// EditFileRequest describes a line-range replacement in the currently
// open workspace file.
type EditFileRequest struct {
	// StartLine is the 1-based line number at which the edit starts.
	StartLine int `json:"start_line"`

	// EndLine is the 1-based line number at which the edit ends (inclusive).
	EndLine int `json:"end_line"`

	// ReplacementText replaces the specified line range verbatim,
	// caller-supplied indentation included. No re-indentation happens
	// anywhere on the way to the file.
	ReplacementText string `json:"replacement_text"`
}

// EditFile replaces all of the text between the start and end lines with
// the replacement text. The receiving workspace validates the line bounds
// and runs a post-edit syntax check; a rejected edit comes back with a
// non-zero return code and the diagnostics in the output, and the agent
// is expected to reissue a corrected command.
type EditFile struct {
	ws Communicator
}

// NewEditFile creates the edit action bound to a workspace channel.
func NewEditFile(ws Communicator) *EditFile {
	return &EditFile{ws: ws}
}

// Name returns the tool name exposed to the agent engine.
func (a *EditFile) Name() string { return "edit_file" }

// BuildEditCommand renders the textual command understood by the
// workspace's line-oriented editor. The replacement payload sits between
// a pair of matching sentinel markers.
func BuildEditCommand(req EditFileRequest) string {
	return fmt.Sprintf("edit %d:%d << %s\n%s\n%s",
		req.StartLine, req.EndLine, workspace.EditMarker,
		req.ReplacementText, workspace.EditMarker)
}

// Execute validates the request, submits the edit command and normalizes
// the workspace's answer.
func (a *EditFile) Execute(ctx context.Context, raw json.RawMessage) (Response, error) {
	var req EditFileRequest
	if err := decode(raw, &req); err != nil {
		return Response{}, err
	}
	if req.StartLine < 1 {
		return Response{}, fmt.Errorf("start_line must be >= 1, got %d", req.StartLine)
	}
	if req.EndLine < req.StartLine {
		return Response{}, fmt.Errorf("end_line must be >= start_line, got %d:%d", req.StartLine, req.EndLine)
	}

	return normalized(a.ws, BuildEditCommand(req)), nil
}
