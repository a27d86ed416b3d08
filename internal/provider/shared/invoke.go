package shared

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

const agentCommand = "codex"

// defaultTimeout bounds a single task execution when the caller's
// context carries no deadline.
const defaultTimeout = 10 * time.Minute

var execCommandContext = exec.CommandContext

// InvokeOptions configures one agent CLI execution.
type InvokeOptions struct {
	Label           string // provider name for log prefixes
	Model           string
	RepoPath        string
	Prompt          string
	ConfigOverrides []string // passed as repeated -c key=value flags
	Env             []string // appended to the process environment
}

// InvokeAgentCLI runs the agent CLI non-interactively and returns its raw
// output. The CLI drives the model's tool loop itself; this call blocks
// until the task is complete.
func InvokeAgentCLI(ctx context.Context, opts InvokeOptions) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	args := []string{
		"exec",
		"-m", opts.Model,
		"--dangerously-bypass-approvals-and-sandbox",
		"-C", opts.RepoPath,
	}
	for _, override := range opts.ConfigOverrides {
		args = append(args, "-c", override)
	}
	args = append(args, opts.Prompt)

	cmd := execCommandContext(ctx, agentCommand, args...)
	cmd.Env = append(os.Environ(), opts.Env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("[%s] Executing: %s exec -m %s -C %s", opts.Label, agentCommand, opts.Model, opts.RepoPath)
	log.Printf("[%s] Prompt length: %d characters", opts.Label, len(opts.Prompt))

	startTime := time.Now()
	if err := cmd.Run(); err != nil {
		duration := time.Since(startTime)
		log.Printf("[%s] Command failed after %v", opts.Label, duration)

		stderrText := strings.TrimSpace(stderr.String())
		if stderrText == "" {
			stderrText = err.Error()
		}

		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%s CLI timeout after %v: %s", agentCommand, duration, stderrText)
		}

		log.Printf("[%s] Error: %s", opts.Label, stderrText)
		return "", fmt.Errorf("%s CLI error: %s", agentCommand, stderrText)
	}

	duration := time.Since(startTime)
	output := stdout.String()
	log.Printf("[%s] Command completed in %v, output length: %d bytes", opts.Label, duration, len(output))

	return output, nil
}
