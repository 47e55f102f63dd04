package rag

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

// Searcher is the slice of the vector store client the retriever needs.
type Searcher interface {
	HybridSearch(ctx context.Context, collection string, dense []float32, sparse *qdrant.SparseVector, opts *qdrant.SearchOptions) ([]qdrant.ScoredPoint, error)
}

// RetrieverConfig holds the defaults applied when a caller passes no search
// options.
type RetrieverConfig struct {
	Collection     string
	DefaultLimit   int
	ScoreThreshold float32
}

// DefaultRetrieverConfig returns the default retrieval settings.
func DefaultRetrieverConfig(collection string) *RetrieverConfig {
	return &RetrieverConfig{
		Collection:     collection,
		DefaultLimit:   5,
		ScoreThreshold: 0.65,
	}
}

// Validate checks the retriever configuration.
func (c *RetrieverConfig) Validate() error {
	if c.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be at least 1")
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("score_threshold must be between 0 and 1")
	}
	return nil
}

// HybridRetriever embeds a question both ways and runs one fused store
// query. Fusion, ranking and thresholding happen in the store; the returned
// list is used as-is.
type HybridRetriever struct {
	provider embedding.Provider
	store    Searcher
	config   *RetrieverConfig
	logger   *logrus.Logger
}

// NewHybridRetriever creates a retriever over an embedding provider and a
// vector store client.
func NewHybridRetriever(provider embedding.Provider, store Searcher, config *RetrieverConfig, logger *logrus.Logger) (*HybridRetriever, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &HybridRetriever{
		provider: provider,
		store:    store,
		config:   config,
		logger:   logger,
	}, nil
}

// Retrieve returns at most opts.Limit chunks with fused score >=
// opts.ScoreThreshold, best first. A nil opts applies the configured
// defaults. An empty result is a valid outcome, not an error.
func (r *HybridRetriever) Retrieve(ctx context.Context, question string, opts *qdrant.SearchOptions) ([]Result, error) {
	dense, err := r.provider.EmbedDense(ctx, question)
	if err != nil {
		return nil, err
	}

	sparse, err := r.provider.EmbedSparse(ctx, question)
	if err != nil {
		return nil, err
	}

	if opts == nil {
		opts = qdrant.DefaultSearchOptions().
			WithLimit(r.config.DefaultLimit).
			WithScoreThreshold(r.config.ScoreThreshold)
	}

	points, err := r.store.HybridSearch(ctx, r.config.Collection, dense, qdrant.NewSparseVector(sparse), opts)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(points))
	for i, point := range points {
		results = append(results, Result{
			ChunkID: point.ID,
			Text:    payloadString(point.Payload, PayloadText),
			Score:   point.Score,
			Rank:    i + 1,
			Title:   payloadString(point.Payload, PayloadTitle),
			Section: payloadString(point.Payload, PayloadSection),
			Source:  payloadString(point.Payload, PayloadSource),
		})
	}

	r.logger.WithFields(logrus.Fields{
		"question": question[:min(50, len(question))],
		"results":  len(results),
	}).Debug("Retrieval completed")

	return results, nil
}
