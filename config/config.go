// Package config loads application configuration from the environment,
// with optional .env support for local runs.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configurable parameters, sourced from environment
// variables (loaded from .env for local runs).
type Config struct {
	// Model provider selection. One of: gemini, openai, anthropic.
	ModelProvider string `envconfig:"MODEL_PROVIDER" default:"gemini"`
	// ModelName overrides the provider's default model when set.
	ModelName string `envconfig:"MODEL_NAME"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	TavilyAPIKey    string `envconfig:"TAVILY_API_KEY"`

	// SessionsDir is where chat history files are stored.
	SessionsDir string `envconfig:"SESSIONS_DIR" default:"sessions"`
	// VectorDBPath is the sqlite database file backing document retrieval.
	VectorDBPath string `envconfig:"VECTOR_DB_PATH" default:"cortexhub.db"`

	// MaxTurns bounds the number of decide/act iterations per run.
	MaxTurns int `envconfig:"AGENT_MAX_TURNS" default:"10"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogPretty enables the human-readable console writer.
	LogPretty bool `envconfig:"LOG_PRETTY" default:"false"`
}

// ConfigurationError reports invalid or missing startup configuration.
// It is fatal; the process should print it and exit.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Load reads .env if present, processes environment variables and validates
// the result.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider selection and the matching API key.
func (c *Config) Validate() error {
	switch c.ModelProvider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return &ConfigurationError{Field: "GEMINI_API_KEY", Reason: "required when MODEL_PROVIDER=gemini"}
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return &ConfigurationError{Field: "OPENAI_API_KEY", Reason: "required when MODEL_PROVIDER=openai"}
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return &ConfigurationError{Field: "ANTHROPIC_API_KEY", Reason: "required when MODEL_PROVIDER=anthropic"}
		}
	default:
		return &ConfigurationError{Field: "MODEL_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", c.ModelProvider)}
	}
	if c.MaxTurns < 1 {
		return &ConfigurationError{Field: "AGENT_MAX_TURNS", Reason: "must be at least 1"}
	}
	return nil
}
