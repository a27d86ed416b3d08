// Package openai drives the agent CLI against the OpenAI backend.
package openai

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cexll/swe-crew/internal/provider/shared"
)

// Provider implements the agent execution backend for OpenAI.
type Provider struct {
	model   string
	apiKey  string
	baseURL string
}

// NewProvider creates an OpenAI provider. baseURL is optional and allows
// custom API endpoints (proxies, local deployments).
func NewProvider(apiKey, baseURL, model string) *Provider {
	return &Provider{
		model:   model,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name returns the provider name
func (p *Provider) Name() string { return "openai" }

// GenerateCode runs one task to completion through the agent CLI.
func (p *Provider) GenerateCode(ctx context.Context, req *shared.CodeRequest) (*shared.CodeResponse, error) {
	log.Printf("[OpenAI] Starting task (prompt length: %d chars)", len(req.Prompt))

	if req.RepoPath == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	if _, err := os.Stat(req.RepoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("repository path does not exist: %s", req.RepoPath)
	}

	env := append([]string{"OPENAI_API_KEY=" + p.apiKey}, req.ExtraEnv...)
	if p.baseURL != "" {
		env = append(env, "OPENAI_BASE_URL="+p.baseURL)
	}

	output, err := shared.InvokeAgentCLI(ctx, shared.InvokeOptions{
		Label:           "OpenAI",
		Model:           p.model,
		RepoPath:        req.RepoPath,
		Prompt:          req.Prompt,
		ConfigOverrides: req.ConfigOverrides,
		Env:             env,
	})
	if err != nil {
		return nil, err
	}

	response, err := shared.ParseResponse("OpenAI", output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("[OpenAI] Response length: %d characters", len(output))
	return response, nil
}
