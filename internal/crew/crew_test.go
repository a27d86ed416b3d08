package crew

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cexll/swe-crew/internal/provider"
)

type fakeLLM struct {
	name    string
	prompts []string
	respond func(prompt string) (*provider.CodeResponse, error)
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) GenerateCode(ctx context.Context, req *provider.CodeRequest) (*provider.CodeResponse, error) {
	f.prompts = append(f.prompts, req.Prompt)
	if f.respond != nil {
		return f.respond(req.Prompt)
	}
	return &provider.CodeResponse{Summary: "done"}, nil
}

func TestKickoffRunsTasksInOrder(t *testing.T) {
	llm := &fakeLLM{name: "openai"}
	var steps []string
	agent := &Agent{
		Role:      "coder",
		Goal:      "fix it",
		Backstory: "backstory",
		LLM:       llm,
		WorkDir:   "/ws/repo",
		StepCallback: func(out string) {
			steps = append(steps, out)
		},
	}

	first := &Task{Description: "first task", Agent: agent}
	second := &Task{Description: "second task", Agent: agent}

	out, err := New(first, second).Kickoff(context.Background())
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if out != "done" {
		t.Errorf("final output = %q", out)
	}
	if len(llm.prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "first task") || !strings.Contains(llm.prompts[1], "second task") {
		t.Errorf("tasks ran out of order: %q", llm.prompts)
	}
	if len(steps) != 2 {
		t.Errorf("step callback fired %d times, want 2", len(steps))
	}
}

func TestKickoffPromptComposition(t *testing.T) {
	llm := &fakeLLM{name: "openai"}
	agent := &Agent{
		Role:      "You are the best programmer.",
		Goal:      "Fix the bug.",
		Backstory: "You work in /repo.",
		LLM:       llm,
	}
	task := &Task{Description: "Fix issue 42.", ExpectedOutput: "A submitted patch.", Agent: agent}

	if _, err := New(task).Kickoff(context.Background()); err != nil {
		t.Fatalf("kickoff: %v", err)
	}

	prompt := llm.prompts[0]
	for _, want := range []string{
		"You are the best programmer.",
		"Your goal: Fix the bug.",
		"You work in /repo.",
		"Your task:\nFix issue 42.",
		"Expected output: A submitted patch.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestKickoffMemoryFeedsContext(t *testing.T) {
	llm := &fakeLLM{
		name: "openai",
		respond: func(prompt string) (*provider.CodeResponse, error) {
			if strings.Contains(prompt, "review") {
				return &provider.CodeResponse{Summary: "patch reviewed"}, nil
			}
			return &provider.CodeResponse{Summary: "patch written"}, nil
		},
	}
	coder := &Agent{Role: "coder", LLM: llm, Memory: true}
	reviewer := &Agent{Role: "reviewer", LLM: llm, Memory: true}

	code := &Task{Description: "write the patch", Agent: coder}
	review := &Task{Description: "review the patch", Agent: reviewer, Context: []*Task{code}}

	out, err := New(code, review).Kickoff(context.Background())
	if err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	if out != "patch reviewed" {
		t.Errorf("final output = %q", out)
	}
	if !strings.Contains(llm.prompts[1], "patch written") {
		t.Errorf("review prompt missing prior task output:\n%s", llm.prompts[1])
	}
	if code.Output() != "patch written" {
		t.Errorf("task output = %q", code.Output())
	}
}

func TestKickoffStopsOnTaskFailure(t *testing.T) {
	llm := &fakeLLM{
		name: "openai",
		respond: func(prompt string) (*provider.CodeResponse, error) {
			return nil, errors.New("CLI error")
		},
	}
	agent := &Agent{Role: "coder", LLM: llm}
	never := &Task{Description: "unreachable", Agent: agent}

	_, err := New(&Task{Description: "boom", Agent: agent}, never).Kickoff(context.Background())
	if err == nil {
		t.Fatal("expected kickoff failure")
	}
	if len(llm.prompts) != 1 {
		t.Errorf("later tasks should not run after a failure, prompts = %d", len(llm.prompts))
	}
}

func TestKickoffEmptyCrew(t *testing.T) {
	if _, err := New().Kickoff(context.Background()); err == nil {
		t.Fatal("expected error for empty crew")
	}
}

func TestKickoffHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &fakeLLM{name: "openai"}
	_, err := New(&Task{Description: "d", Agent: &Agent{LLM: llm}}).Kickoff(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("no tasks should run on a cancelled context")
	}
}
