package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/tokens"
)

// OllamaProvider embeds text with an Ollama embedding model for the dense
// signal and the lexical encoder for the sparse signal.
type OllamaProvider struct {
	config     *Config
	httpClient *http.Client
	sparse     *SparseEncoder
	counter    *tokens.Counter
	logger     *logrus.Logger
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider creates an embedding provider.
func NewOllamaProvider(config *Config, counter *tokens.Counter, logger *logrus.Logger) (*OllamaProvider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	if counter == nil {
		counter = tokens.NewCounter(logger)
	}

	sparse, err := NewSparseEncoder(config.SparseModel)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &OllamaProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		sparse:  sparse,
		counter: counter,
		logger:  logger,
	}, nil
}

// EmbedDense requests a dense vector from the configured Ollama model.
func (p *OllamaProvider) EmbedDense(ctx context.Context, text string) ([]float32, error) {
	if err := p.checkInput(text); err != nil {
		return nil, err
	}

	jsonBody, err := json.Marshal(ollamaEmbedRequest{
		Model:  p.config.DenseModel,
		Prompt: text,
	})
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to marshal request", Underlying: err}
	}

	url := strings.TrimRight(p.config.OllamaURL, "/") + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to create request", Underlying: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Message: "embedding request failed", Underlying: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to read response", Underlying: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("embedding request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}
	}

	var parsed ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &EmbeddingError{Message: "failed to parse response", Underlying: err}
	}

	if len(parsed.Embedding) != p.config.VectorSize {
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("model returned %d dimensions, expected %d", len(parsed.Embedding), p.config.VectorSize),
		}
	}

	p.logger.WithFields(logrus.Fields{
		"model":      p.config.DenseModel,
		"dimensions": len(parsed.Embedding),
	}).Debug("Dense embedding produced")

	return parsed.Embedding, nil
}

// EmbedSparse encodes text into sparse term weights. An empty weight map is
// a valid result for text with no indexable terms.
func (p *OllamaProvider) EmbedSparse(ctx context.Context, text string) (map[uint32]float32, error) {
	if err := p.checkInput(text); err != nil {
		return nil, err
	}
	return p.sparse.Encode(text), nil
}

func (p *OllamaProvider) checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return &EmbeddingError{Message: "input text is empty"}
	}
	if n := p.counter.Count(text); n > p.config.MaxInputTokens {
		return &EmbeddingError{
			Message: fmt.Sprintf("input of %d tokens exceeds limit of %d", n, p.config.MaxInputTokens),
		}
	}
	return nil
}
