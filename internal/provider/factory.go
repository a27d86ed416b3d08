package provider

import (
	"fmt"

	"github.com/cexll/swe-crew/internal/config"
	"github.com/cexll/swe-crew/internal/provider/azure"
	"github.com/cexll/swe-crew/internal/provider/openai"
)

// New creates a provider for a model environment variant. The switch is
// exhaustive over the closed set of variants; config never constructs
// anything else, so the default arm only fires on a programming error.
func New(env config.ModelEnv) (Provider, error) {
	switch e := env.(type) {
	case config.OpenAIEnv:
		return openai.NewProvider(e.APIKey, e.BaseURL, e.Model), nil
	case config.AzureEnv:
		return azure.NewProvider(e.Endpoint, e.APIKey, e.Deployment, e.APIVersion), nil
	default:
		return nil, fmt.Errorf("unsupported model environment: %T", env)
	}
}
