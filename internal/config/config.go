package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the swe-crew service
type Config struct {
	// Server settings
	Port int

	// Directories
	AgentLogsDir   string
	WorkspacesRoot string

	// LLM backend selection
	ModelEnv ModelEnv

	// GitHub App settings (optional; enables authenticated clones and
	// issue enrichment)
	GitHubAppID      string
	GitHubPrivateKey string

	// Review stage. The reviewer agent and review task are only
	// constructed and run when this is set.
	ReviewEnabled bool

	// DailyRunLimit caps run starts per day. Zero disables the cap.
	DailyRunLimit int

	// Dispatcher settings
	DispatcherWorkers           int
	DispatcherQueueSize         int
	DispatcherMaxAttempts       int
	DispatcherRetryInitial      time.Duration
	DispatcherBackoffMultiplier float64
	DispatcherRetryMax          time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	modelEnv, err := newModelEnv(getEnv("MODEL_ENV", "openai"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:                        getEnvInt("PORT", 8000),
		AgentLogsDir:                getEnv("AGENT_LOGS_DIR", "coder_agent_logs"),
		WorkspacesRoot:              getEnvRaw("WORKSPACES_ROOT"),
		ModelEnv:                    modelEnv,
		GitHubAppID:                 getEnvRaw("GITHUB_APP_ID"),
		GitHubPrivateKey:            normalizePrivateKey(getEnvRaw("GITHUB_PRIVATE_KEY")),
		ReviewEnabled:               getEnvBool("REVIEW_ENABLED", false),
		DailyRunLimit:               getEnvInt("DAILY_RUN_LIMIT", 0),
		DispatcherWorkers:           getEnvInt("DISPATCHER_WORKERS", 2),
		DispatcherQueueSize:         getEnvInt("DISPATCHER_QUEUE_SIZE", 8),
		DispatcherMaxAttempts:       getEnvInt("DISPATCHER_MAX_ATTEMPTS", 1),
		DispatcherRetryInitial:      time.Duration(getEnvInt("DISPATCHER_RETRY_SECONDS", 15)) * time.Second,
		DispatcherRetryMax:          time.Duration(getEnvInt("DISPATCHER_RETRY_MAX_SECONDS", 300)) * time.Second,
		DispatcherBackoffMultiplier: getEnvFloat("DISPATCHER_BACKOFF_MULTIPLIER", 2.0),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks configuration consistency beyond what the model
// environment variants already enforce.
func (c *Config) validate() error {
	if err := c.validateGitHubCredentials(); err != nil {
		return err
	}
	return c.validateDispatcherConfig()
}

// validateGitHubCredentials requires App ID and private key to be set
// together or not at all.
func (c *Config) validateGitHubCredentials() error {
	if c.GitHubAppID == "" && c.GitHubPrivateKey == "" {
		return nil
	}
	if c.GitHubAppID == "" {
		return fmt.Errorf("GITHUB_APP_ID is required when GITHUB_PRIVATE_KEY is set")
	}
	if c.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY is required when GITHUB_APP_ID is set")
	}
	return nil
}

func (c *Config) validateDispatcherConfig() error {
	if c.DispatcherWorkers <= 0 {
		return fmt.Errorf("DISPATCHER_WORKERS must be greater than 0")
	}
	if c.DispatcherQueueSize <= 0 {
		return fmt.Errorf("DISPATCHER_QUEUE_SIZE must be greater than 0")
	}
	if c.DispatcherMaxAttempts <= 0 {
		return fmt.Errorf("DISPATCHER_MAX_ATTEMPTS must be greater than 0")
	}
	if c.DispatcherRetryInitial <= 0 {
		return fmt.Errorf("DISPATCHER_RETRY_SECONDS must be greater than 0")
	}
	if c.DispatcherRetryMax < c.DispatcherRetryInitial {
		return fmt.Errorf("DISPATCHER_RETRY_MAX_SECONDS must be >= DISPATCHER_RETRY_SECONDS")
	}
	if c.DispatcherBackoffMultiplier < 1 {
		return fmt.Errorf("DISPATCHER_BACKOFF_MULTIPLIER must be >= 1")
	}
	return nil
}

// HasGitHubApp reports whether App credentials are configured.
func (c *Config) HasGitHubApp() bool {
	return c.GitHubAppID != "" && c.GitHubPrivateKey != ""
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRaw(key string) string {
	return os.Getenv(key)
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
