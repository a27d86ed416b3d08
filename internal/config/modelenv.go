package config

import "fmt"

// ModelEnv is a tagged variant over the closed set of recognized LLM
// backend environments. Each variant carries its own required credential
// fields and is validated at construction time; an unrecognized
// environment key never constructs a variant at all.
type ModelEnv interface {
	// Backend returns the environment key ("openai" or "azure").
	Backend() string

	validate() error
}

// OpenAIEnv selects the OpenAI backend.
type OpenAIEnv struct {
	APIKey  string
	BaseURL string // optional custom endpoint
	Model   string
}

func (OpenAIEnv) Backend() string { return "openai" }

func (e OpenAIEnv) validate() error {
	if e.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the openai model environment")
	}
	return nil
}

// AzureEnv selects the Azure OpenAI backend.
type AzureEnv struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

func (AzureEnv) Backend() string { return "azure" }

func (e AzureEnv) validate() error {
	if e.Endpoint == "" {
		return fmt.Errorf("AZURE_OPENAI_ENDPOINT is required for the azure model environment")
	}
	if e.APIKey == "" {
		return fmt.Errorf("AZURE_OPENAI_API_KEY is required for the azure model environment")
	}
	return nil
}

// newModelEnv builds the variant for an environment key from the ambient
// settings. Unknown keys are a configuration error.
func newModelEnv(key string) (ModelEnv, error) {
	var env ModelEnv
	switch key {
	case "openai":
		env = OpenAIEnv{
			APIKey:  getEnvRaw("OPENAI_API_KEY"),
			BaseURL: getEnvRaw("OPENAI_BASE_URL"),
			Model:   getEnv("OPENAI_MODEL", "gpt-5-codex"),
		}
	case "azure":
		env = AzureEnv{
			Endpoint:   getEnvRaw("AZURE_OPENAI_ENDPOINT"),
			APIKey:     getEnvRaw("AZURE_OPENAI_API_KEY"),
			Deployment: getEnv("AZURE_OPENAI_DEPLOYMENT", "gpt-4-turbo"),
			APIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		}
	default:
		return nil, fmt.Errorf("invalid model environment: %s (must be 'openai' or 'azure')", key)
	}

	if err := env.validate(); err != nil {
		return nil, err
	}
	return env, nil
}
