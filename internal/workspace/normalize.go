package workspace

import "strings"

// NoOutputSentinel is substituted for empty command output so the agent
// always sees a non-empty observation.
const NoOutputSentinel = "no output"

// CmdResponse is the raw result of a command executed in a workspace.
type CmdResponse struct {
	Output     string `json:"output"`
	ReturnCode int    `json:"return_code"`
}

// ProcessOutput normalizes a raw (output, return code) pair from a command
// execution. The return code passes through unchanged; empty output is
// replaced with a sentinel string. Return code 0 denotes success, any other
// value denotes failure, and the output is preserved verbatim either way.
func ProcessOutput(output string, returnCode int) (string, int) {
	if strings.TrimSpace(output) == "" {
		return NoOutputSentinel, returnCode
	}
	return output, returnCode
}
