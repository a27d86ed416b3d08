// Package provider abstracts the agent execution backend: an LLM-driven
// CLI that runs a task to completion inside a repository checkout, using
// the tools this service exposes over MCP.
package provider

import (
	"context"

	"github.com/cexll/swe-crew/internal/provider/shared"
)

// CodeRequest and CodeResponse are defined in the shared subpackage so
// backend implementations do not import this one.
type (
	CodeRequest  = shared.CodeRequest
	CodeResponse = shared.CodeResponse
)

// Provider is the interface all agent execution backends implement.
type Provider interface {
	// GenerateCode runs one task to completion.
	GenerateCode(ctx context.Context, req *CodeRequest) (*CodeResponse, error)

	// Name returns the provider name
	Name() string
}
