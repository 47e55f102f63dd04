package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:11434", config.URL)
	assert.Equal(t, 0.7, config.Temperature)
	assert.Equal(t, 512, config.MaxTokens)
	assert.Equal(t, 2048, config.NCtx)
	assert.Equal(t, 120*time.Second, config.Timeout)
	assert.Equal(t, 2, config.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, config.RetryDelay)
	assert.Contains(t, config.SystemPrompt, PlaceholderContext)
	assert.Contains(t, config.SystemPrompt, PlaceholderQuery)
	assert.Contains(t, config.RefinementPrompt, PlaceholderContext)
	assert.Contains(t, config.RefinementPrompt, PlaceholderQuery)
	assert.NoError(t, config.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid default config",
			modify:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "empty url",
			modify:      func(c *Config) { c.URL = "" },
			expectError: true,
			errorMsg:    "url is required",
		},
		{
			name:        "empty model",
			modify:      func(c *Config) { c.Model = "" },
			expectError: true,
			errorMsg:    "model is required",
		},
		{
			name:        "temperature out of range",
			modify:      func(c *Config) { c.Temperature = 2.5 },
			expectError: true,
			errorMsg:    "temperature must be between 0 and 2",
		},
		{
			name:        "zero max tokens",
			modify:      func(c *Config) { c.MaxTokens = 0 },
			expectError: true,
			errorMsg:    "max_tokens must be at least 1",
		},
		{
			name:        "context window smaller than completion budget",
			modify:      func(c *Config) { c.NCtx = 256 },
			expectError: true,
			errorMsg:    "n_ctx must exceed max_tokens",
		},
		{
			name:        "system prompt missing query placeholder",
			modify:      func(c *Config) { c.SystemPrompt = "Context: {context}" },
			expectError: true,
			errorMsg:    "system_prompt must contain the {query} placeholder",
		},
		{
			name:        "refinement prompt missing context placeholder",
			modify:      func(c *Config) { c.RefinementPrompt = "Rewrite: {query}" },
			expectError: true,
			errorMsg:    "refinement_prompt must contain the {context} placeholder",
		},
		{
			name:        "negative max retries",
			modify:      func(c *Config) { c.MaxRetries = -1 },
			expectError: true,
			errorMsg:    "max_retries cannot be negative",
		},
		{
			name:        "zero retry delay",
			modify:      func(c *Config) { c.RetryDelay = 0 },
			expectError: true,
			errorMsg:    "retry_delay must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
