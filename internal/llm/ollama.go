package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// OllamaClient completes prompts against an Ollama generate endpoint.
type OllamaClient struct {
	config     *Config
	httpClient *http.Client
	logger     *logrus.Logger
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// completionError carries a non-200 completion service response.
type completionError struct {
	Status int
	Body   string
}

func (e *completionError) Error() string {
	return fmt.Sprintf("completion request returned status %d: %s", e.Status, e.Body)
}

// NewOllamaClient creates a completion client.
func NewOllamaClient(config *Config, logger *logrus.Logger) (*OllamaClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &OllamaClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Complete runs one non-streaming completion. Request options fall back to
// the configured temperature and max_tokens when unset. Network failures,
// rate limiting, and server errors are retried with exponential backoff up
// to MaxRetries; other failures are final immediately.
func (c *OllamaClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	jsonBody, err := json.Marshal(ollamaGenerateRequest{
		Model:  c.config.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: &ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
			NumCtx:      c.config.NCtx,
		},
	})
	if err != nil {
		return "", &GenerationError{Message: "failed to marshal request", Underlying: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		answer, err := c.attempt(ctx, jsonBody)
		if err == nil {
			c.logger.WithFields(logrus.Fields{
				"model":         c.config.Model,
				"prompt_length": len(req.Prompt),
			}).Debug("Completion produced")
			return answer, nil
		}
		lastErr = err

		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return "", genErr
		}
		var respErr *completionError
		if errors.As(err, &respErr) && !retryableStatus(respErr.Status) {
			return "", &GenerationError{Message: respErr.Error()}
		}

		if attempt < c.config.MaxRetries {
			c.logger.WithFields(logrus.Fields{
				"model":   c.config.Model,
				"attempt": attempt + 1,
			}).WithError(err).Warn("Completion attempt failed, retrying")

			if err := backoff(ctx, c.config.RetryDelay, attempt); err != nil {
				return "", &GenerationError{Message: "request cancelled during retry", Underlying: err}
			}
		}
	}

	return "", &GenerationError{
		Message:    fmt.Sprintf("completion failed after %d attempts", c.config.MaxRetries+1),
		Underlying: lastErr,
	}
}

func (c *OllamaClient) attempt(ctx context.Context, jsonBody []byte) (string, error) {
	url := strings.TrimRight(c.config.URL, "/") + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", &GenerationError{Message: "failed to create request", Underlying: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &completionError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &GenerationError{Message: "failed to parse response", Underlying: err}
	}

	return parsed.Response, nil
}
