// Package llm provides the text-completion client used for query refinement
// and answer generation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompletionRequest carries one fully rendered prompt and its sampling
// options.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Client is a text-completion service: a rendered prompt in, a completion
// out. Retry policy, if any, lives inside implementations; callers treat a
// returned error as final.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

const defaultSystemPrompt = `You are a medical assistant answering questions about cancer. Use only the context below to ground your answer. If the context is empty or does not cover the question, say that no supporting passages were found and answer cautiously from general knowledge.

Context:
{context}

Question: {query}

Answer:`

const defaultRefinementPrompt = `Given the conversation so far and a follow-up question, rewrite the follow-up into a single standalone question that can be understood without the conversation. Return only the rewritten question.

Conversation:
{context}

Follow-up question: {query}

Standalone question:`

// Config holds completion service configuration and the two prompt
// templates. Both templates must carry the literal {context} and {query}
// placeholders.
type Config struct {
	URL              string        `yaml:"url"`
	Model            string        `yaml:"model"`
	Temperature      float64       `yaml:"temperature"`
	MaxTokens        int           `yaml:"max_tokens"`
	NCtx             int           `yaml:"n_ctx"`
	SystemPrompt     string        `yaml:"system_prompt"`
	RefinementPrompt string        `yaml:"refinement_prompt"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
}

// DefaultConfig returns the default completion configuration.
func DefaultConfig() *Config {
	return &Config{
		URL:              "http://localhost:11434",
		Model:            "llama3",
		Temperature:      0.7,
		MaxTokens:        512,
		NCtx:             2048,
		SystemPrompt:     defaultSystemPrompt,
		RefinementPrompt: defaultRefinementPrompt,
		Timeout:          120 * time.Second,
		MaxRetries:       2,
		RetryDelay:       500 * time.Millisecond,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("url is required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1")
	}
	if c.NCtx < 1 {
		return fmt.Errorf("n_ctx must be at least 1")
	}
	if c.NCtx <= c.MaxTokens {
		return fmt.Errorf("n_ctx must exceed max_tokens")
	}
	if err := validateTemplate("system_prompt", c.SystemPrompt); err != nil {
		return err
	}
	if err := validateTemplate("refinement_prompt", c.RefinementPrompt); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry_delay must be positive")
	}
	return nil
}

func validateTemplate(name, template string) error {
	for _, placeholder := range []string{PlaceholderContext, PlaceholderQuery} {
		if !strings.Contains(template, placeholder) {
			return fmt.Errorf("%s must contain the %s placeholder", name, placeholder)
		}
	}
	return nil
}
