// Package embedding produces dense and sparse vector representations of text.
package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider embeds text into the two retrieval signals: a fixed-dimension
// dense vector for semantic similarity and a sparse term-weight vector for
// lexical similarity. Both calls are deterministic for a fixed model version.
type Provider interface {
	EmbedDense(ctx context.Context, text string) ([]float32, error)
	EmbedSparse(ctx context.Context, text string) (map[uint32]float32, error)
}

// Config holds embedding provider configuration.
type Config struct {
	OllamaURL      string        `yaml:"ollama_url"`
	DenseModel     string        `yaml:"dense_model"`
	SparseModel    string        `yaml:"sparse_model"`
	VectorSize     int           `yaml:"vector_size"`
	MaxInputTokens int           `yaml:"max_input_tokens"`
	Timeout        time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default embedding configuration.
func DefaultConfig() *Config {
	return &Config{
		OllamaURL:      "http://localhost:11434",
		DenseModel:     "all-minilm",
		SparseModel:    "lexical-v1",
		VectorSize:     384,
		MaxInputTokens: 512,
		Timeout:        30 * time.Second,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OllamaURL) == "" {
		return fmt.Errorf("ollama_url is required")
	}
	if strings.TrimSpace(c.DenseModel) == "" {
		return fmt.Errorf("dense_model is required")
	}
	if strings.TrimSpace(c.SparseModel) == "" {
		return fmt.Errorf("sparse_model is required")
	}
	if c.VectorSize < 1 {
		return fmt.Errorf("vector_size must be at least 1")
	}
	if c.MaxInputTokens < 1 {
		return fmt.Errorf("max_input_tokens must be at least 1")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
