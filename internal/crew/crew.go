// Package crew runs a small sequence of role-playing agents, each backed by
// an LLM provider, feeding every task the outputs of the tasks it depends on.
package crew

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cexll/swe-crew/internal/provider"
)

// Agent is one persona in a crew. The provider CLI drives the agent's tool
// loop; the crew only supplies the prompt and collects the final output.
type Agent struct {
	Role      string
	Goal      string
	Backstory string

	// LLM executes the composed prompt.
	LLM provider.Provider

	// Memory keeps earlier task outputs of this crew visible to the agent
	// through the task context.
	Memory bool

	// WorkDir is the repository the agent operates in.
	WorkDir string

	// ConfigOverrides and ExtraEnv are passed through to the provider on
	// every task this agent executes.
	ConfigOverrides []string
	ExtraEnv        []string

	// StepCallback, when set, observes each completed task's output.
	StepCallback func(output string)
}

// Task is one unit of work assigned to an agent.
type Task struct {
	Description    string
	ExpectedOutput string
	Agent          *Agent

	// Context lists earlier tasks whose outputs are prepended to this
	// task's prompt.
	Context []*Task

	output string
}

// Output returns the task's result after the crew has run it.
func (t *Task) Output() string {
	return t.output
}

// Crew executes its tasks sequentially.
type Crew struct {
	Tasks []*Task
}

// New assembles a crew from an ordered task list.
func New(tasks ...*Task) *Crew {
	return &Crew{Tasks: tasks}
}

// Kickoff runs every task in order and returns the final task's output. A
// task failure stops the run; completed task outputs stay readable via
// Task.Output.
func (c *Crew) Kickoff(ctx context.Context) (string, error) {
	if len(c.Tasks) == 0 {
		return "", fmt.Errorf("crew has no tasks")
	}

	var final string
	for i, task := range c.Tasks {
		if task.Agent == nil {
			return "", fmt.Errorf("task %d has no agent", i)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		log.Printf("[Crew] Task %d/%d (%s) starting", i+1, len(c.Tasks), task.Agent.LLM.Name())
		output, err := runTask(ctx, task)
		if err != nil {
			return "", fmt.Errorf("task %d failed: %w", i+1, err)
		}
		task.output = output
		final = output

		if task.Agent.StepCallback != nil {
			task.Agent.StepCallback(output)
		}
		log.Printf("[Crew] Task %d/%d completed, output length: %d", i+1, len(c.Tasks), len(output))
	}
	return final, nil
}

func runTask(ctx context.Context, task *Task) (string, error) {
	agent := task.Agent
	resp, err := agent.LLM.GenerateCode(ctx, &provider.CodeRequest{
		Prompt:          composePrompt(task),
		RepoPath:        agent.WorkDir,
		ConfigOverrides: agent.ConfigOverrides,
		ExtraEnv:        agent.ExtraEnv,
	})
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

// composePrompt flattens an agent definition and a task into the single
// prompt the provider CLI receives.
func composePrompt(task *Task) string {
	agent := task.Agent

	var b strings.Builder
	b.WriteString(agent.Role)
	b.WriteString("\n\n")
	b.WriteString("Your goal: ")
	b.WriteString(agent.Goal)
	b.WriteString("\n\n")
	b.WriteString(agent.Backstory)

	if agent.Memory {
		for _, prior := range task.Context {
			if prior.output == "" {
				continue
			}
			b.WriteString("\n\nOutput of a previous task:\n")
			b.WriteString(prior.output)
		}
	}

	b.WriteString("\n\nYour task:\n")
	b.WriteString(task.Description)
	if task.ExpectedOutput != "" {
		b.WriteString("\n\nExpected output: ")
		b.WriteString(task.ExpectedOutput)
	}
	return b.String()
}
