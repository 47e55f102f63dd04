// Package qdrant provides a REST client for hybrid search over a Qdrant
// collection holding dense and sparse vectors.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// preRetrieveMultiplier sizes each prefetch branch relative to the final
// limit so the fusion stage has enough candidates from both signals.
const preRetrieveMultiplier = 3

// Client provides an interface to interact with Qdrant vector database
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logrus.Logger
	mu         sync.RWMutex
	connected  bool
}

// NewClient creates a new Qdrant client
func NewClient(config *Config, logger *logrus.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:    logger,
		connected: false,
	}, nil
}

// Connect verifies connectivity to Qdrant
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.healthCheckLocked(ctx); err != nil {
		return fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	c.connected = true
	c.logger.WithField("url", c.config.BaseURL()).Info("Connected to Qdrant")
	return nil
}

// Close closes the client connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// HealthCheck checks the health of Qdrant
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthCheckLocked(ctx)
}

func (c *Client) healthCheckLocked(ctx context.Context) error {
	// Root endpoint; newer Qdrant versions have no /health
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}

	return nil
}

// requestError carries a non-2xx store response.
type requestError struct {
	Status int
	Body   string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body)
}

func (e *requestError) retryable() bool {
	return e.Status >= 500
}

// doRequest issues a request with bounded retry. Network failures and 5xx
// responses are retried with exponential backoff up to MaxRetries and then
// surface as StoreUnavailableError; other HTTP errors return immediately.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		respBody, err := c.attempt(ctx, method, path, jsonBody)
		if err == nil {
			return respBody, nil
		}
		lastErr = err

		var reqErr *requestError
		if errors.As(err, &reqErr) && !reqErr.retryable() {
			return nil, err
		}

		if attempt < c.config.MaxRetries {
			delay := time.Duration(float64(c.config.RetryDelay) * math.Pow(2, float64(attempt)))

			c.logger.WithFields(logrus.Fields{
				"method":  method,
				"path":    path,
				"attempt": attempt + 1,
				"delay":   delay,
			}).WithError(err).Warn("Store request failed, retrying")

			select {
			case <-ctx.Done():
				return nil, &StoreUnavailableError{Message: "request cancelled during retry", Underlying: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}

	return nil, &StoreUnavailableError{
		Message:    fmt.Sprintf("%s %s failed after %d attempts", method, path, c.config.MaxRetries+1),
		Underlying: lastErr,
	}
}

func (c *Client) attempt(ctx context.Context, method, path string, jsonBody []byte) ([]byte, error) {
	url := c.config.BaseURL() + path

	var reqBody io.Reader
	if jsonBody != nil {
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("api-key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &requestError{Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// EnsureCollection creates the hybrid collection if it does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	exists, err := c.CollectionExists(ctx, config.Name)
	if err != nil {
		return err
	}
	if exists {
		c.logger.WithField("collection", config.Name).Debug("Collection already exists")
		return nil
	}
	return c.CreateCollection(ctx, config)
}

// CreateCollection creates a hybrid collection with a named dense vector
// field and a named sparse vector field.
func (c *Client) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected to Qdrant")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid collection config: %w", err)
	}

	sparseConfig := map[string]interface{}{}
	if config.SparseIDF {
		sparseConfig["modifier"] = "idf"
	}

	reqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			DenseVectorName: map[string]interface{}{
				"size":     config.VectorSize,
				"distance": string(config.Distance),
			},
		},
		"sparse_vectors": map[string]interface{}{
			SparseVectorName: sparseConfig,
		},
	}

	if config.OnDiskPayload {
		reqBody["on_disk_payload"] = true
	}

	path := fmt.Sprintf("/collections/%s", config.Name)
	_, err := c.doRequest(ctx, http.MethodPut, path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection":  config.Name,
		"vector_size": config.VectorSize,
		"distance":    config.Distance,
	}).Info("Collection created")
	return nil
}

// DeleteCollection deletes a collection
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected to Qdrant")
	}

	path := fmt.Sprintf("/collections/%s", name)
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	c.logger.WithField("collection", name).Info("Collection deleted")
	return nil
}

// CollectionExists checks if a collection exists
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return false, fmt.Errorf("not connected to Qdrant")
	}

	path := fmt.Sprintf("/collections/%s", name)
	_, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) && reqErr.Status == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check collection: %w", err)
	}

	return true, nil
}

// UpsertPoints inserts or replaces points by id. Re-upserting a point with
// identical vectors and payload leaves the collection observationally
// unchanged.
func (c *Client) UpsertPoints(ctx context.Context, collection string, points []Point) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected to Qdrant")
	}

	if len(points) == 0 {
		return nil
	}

	// Ensure all points have IDs
	for i := range points {
		if points[i].ID == "" {
			points[i].ID = uuid.New().String()
		}
	}

	reqBody := map[string]interface{}{
		"points": points,
	}

	path := fmt.Sprintf("/collections/%s/points", collection)
	_, err := c.doRequest(ctx, http.MethodPut, path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": collection,
		"count":      len(points),
	}).Debug("Points upserted")

	return nil
}

// HybridSearch runs a fused dense+sparse query and returns at most
// opts.Limit results with fused score >= opts.ScoreThreshold, ordered
// descending. When the sparse vector carries no terms the query degrades to
// a plain dense search.
func (c *Client) HybridSearch(ctx context.Context, collection string, dense []float32, sparse *SparseVector, opts *SearchOptions) ([]ScoredPoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return nil, fmt.Errorf("not connected to Qdrant")
	}

	if opts == nil {
		opts = DefaultSearchOptions()
	}

	reqBody := map[string]interface{}{
		"limit":        opts.Limit,
		"with_payload": opts.WithPayload,
	}

	if sparse != nil && len(sparse.Indices) > 0 {
		prefetchLimit := opts.Limit * preRetrieveMultiplier
		reqBody["prefetch"] = []map[string]interface{}{
			{
				"query": dense,
				"using": DenseVectorName,
				"limit": prefetchLimit,
			},
			{
				"query": map[string]interface{}{
					"indices": sparse.Indices,
					"values":  sparse.Values,
				},
				"using": SparseVectorName,
				"limit": prefetchLimit,
			},
		}
		reqBody["query"] = map[string]interface{}{
			"fusion": string(c.config.Fusion),
		}
	} else {
		reqBody["query"] = dense
		reqBody["using"] = DenseVectorName
	}

	if opts.ScoreThreshold > 0 {
		reqBody["score_threshold"] = opts.ScoreThreshold
	}

	if opts.Filter != nil {
		reqBody["filter"] = opts.Filter
	}

	path := fmt.Sprintf("/collections/%s/points/query", collection)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	var response struct {
		Result struct {
			Points []ScoredPoint `json:"points"`
		} `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"collection": collection,
		"fusion":     c.config.Fusion,
		"results":    len(response.Result.Points),
	}).Debug("Hybrid search completed")

	return response.Result.Points, nil
}

// CountPoints returns the number of points in a collection
func (c *Client) CountPoints(ctx context.Context, collection string, filter map[string]interface{}) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return 0, fmt.Errorf("not connected to Qdrant")
	}

	reqBody := map[string]interface{}{
		"exact": true,
	}

	if filter != nil {
		reqBody["filter"] = filter
	}

	path := fmt.Sprintf("/collections/%s/points/count", collection)
	respBody, err := c.doRequest(ctx, http.MethodPost, path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}

	var response struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}

	if err := json.Unmarshal(respBody, &response); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}

	return response.Result.Count, nil
}
