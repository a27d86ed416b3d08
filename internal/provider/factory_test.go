package provider

import (
	"testing"

	"github.com/cexll/swe-crew/internal/config"
)

func TestNewProviderOpenAI(t *testing.T) {
	p, err := New(config.OpenAIEnv{APIKey: "sk-test", Model: "gpt-5-codex"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name = %q, want openai", p.Name())
	}
}

func TestNewProviderAzure(t *testing.T) {
	p, err := New(config.AzureEnv{
		Endpoint:   "https://example.openai.azure.com",
		APIKey:     "azure-key",
		Deployment: "gpt-4-turbo",
		APIVersion: "2024-02-01",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "azure" {
		t.Errorf("Name = %q, want azure", p.Name())
	}
}
