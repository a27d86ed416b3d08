// Package action defines the typed operations exposed to the agent
// execution engine as callable tools. Each action translates a validated
// request into a textual command for a workspace, submits it over the
// workspace communication channel, and normalizes the result.
package action

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cexll/swe-crew/internal/workspace"
)

// Response carries a workspace's textual output and return code back to
// the calling framework. Return code 0 denotes success; any other value
// denotes failure and Output holds the diagnostics verbatim.
type Response struct {
	Output     string `json:"output"`
	ReturnCode int    `json:"return_code"`
}

// Communicator is the remote workspace channel consumed by actions.
type Communicator interface {
	Communicate(command string) workspace.CmdResponse
}

// Action is a single typed operation (request schema in, Response out).
// Execute returns an error only for requests rejected before reaching the
// workspace (malformed JSON, invalid fields); failures of the command
// itself come back as a Response with a non-zero return code so the
// calling agent can decide whether to reissue a corrected command.
type Action interface {
	Name() string
	Execute(ctx context.Context, raw json.RawMessage) (Response, error)
}

// decode unmarshals a raw request into the action's request schema.
func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty request")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed request: %w", err)
	}
	return nil
}

// normalized runs a command through the communicator and shapes the raw
// result via the response normalizer.
func normalized(c Communicator, command string) Response {
	resp := c.Communicate(command)
	output, code := workspace.ProcessOutput(resp.Output, resp.ReturnCode)
	return Response{Output: output, ReturnCode: code}
}
