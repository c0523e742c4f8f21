package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ModelProvider: "gemini",
		GeminiAPIKey:  "key",
		SessionsDir:   "sessions",
		VectorDBPath:  "db",
		MaxTurns:      10,
	}
}

func TestConfig_ValidateProviders(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.ModelProvider = "openai"
	cfg.OpenAIAPIKey = "key"
	require.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.ModelProvider = "anthropic"
	cfg.AnthropicAPIKey = "key"
	require.NoError(t, cfg.Validate())
}

func TestConfig_MissingProviderKey(t *testing.T) {
	cfg := validConfig()
	cfg.GeminiAPIKey = ""

	err := cfg.Validate()
	require.Error(t, err)

	var confErr *ConfigurationError
	require.ErrorAs(t, err, &confErr)
	assert.Equal(t, "GEMINI_API_KEY", confErr.Field)
}

func TestConfig_UnknownProvider(t *testing.T) {
	cfg := validConfig()
	cfg.ModelProvider = "llama"

	var confErr *ConfigurationError
	require.ErrorAs(t, cfg.Validate(), &confErr)
	assert.Equal(t, "MODEL_PROVIDER", confErr.Field)
}

func TestConfig_InvalidMaxTurns(t *testing.T) {
	cfg := validConfig()
	cfg.MaxTurns = 0

	var confErr *ConfigurationError
	require.ErrorAs(t, cfg.Validate(), &confErr)
	assert.Equal(t, "AGENT_MAX_TURNS", confErr.Field)
}
