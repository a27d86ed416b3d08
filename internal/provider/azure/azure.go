// Package azure drives the agent CLI against an Azure OpenAI deployment.
// Azure exposes an OpenAI-compatible surface, so the CLI invocation is
// shared; only the credential and endpoint shape differs.
package azure

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cexll/swe-crew/internal/provider/shared"
)

// Provider implements the agent execution backend for Azure OpenAI.
type Provider struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
}

// NewProvider creates an Azure provider for a specific deployment.
func NewProvider(endpoint, apiKey, deployment, apiVersion string) *Provider {
	return &Provider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		deployment: deployment,
		apiVersion: apiVersion,
	}
}

// Name returns the provider name
func (p *Provider) Name() string { return "azure" }

// BaseURL returns the OpenAI-compatible endpoint for the deployment.
func (p *Provider) BaseURL() string {
	return strings.TrimRight(p.endpoint, "/") + "/openai/v1"
}

// GenerateCode runs one task to completion through the agent CLI.
func (p *Provider) GenerateCode(ctx context.Context, req *shared.CodeRequest) (*shared.CodeResponse, error) {
	log.Printf("[Azure] Starting task (prompt length: %d chars)", len(req.Prompt))

	if req.RepoPath == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	if _, err := os.Stat(req.RepoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("repository path does not exist: %s", req.RepoPath)
	}

	env := append([]string{
		"OPENAI_API_KEY=" + p.apiKey,
		"OPENAI_BASE_URL=" + p.BaseURL(),
		"AZURE_OPENAI_ENDPOINT=" + p.endpoint,
		"AZURE_OPENAI_API_KEY=" + p.apiKey,
		"AZURE_OPENAI_API_VERSION=" + p.apiVersion,
	}, req.ExtraEnv...)

	output, err := shared.InvokeAgentCLI(ctx, shared.InvokeOptions{
		Label:           "Azure",
		Model:           p.deployment,
		RepoPath:        req.RepoPath,
		Prompt:          req.Prompt,
		ConfigOverrides: req.ConfigOverrides,
		Env:             env,
	})
	if err != nil {
		return nil, err
	}

	response, err := shared.ParseResponse("Azure", output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	log.Printf("[Azure] Response length: %d characters", len(output))
	return response, nil
}
