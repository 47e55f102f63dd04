package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

// Retriever runs a hybrid search for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, opts *qdrant.SearchOptions) ([]rag.Result, error)
}

// SearchHandler exposes retrieval without generation.
type SearchHandler struct {
	retriever Retriever
	defaults  *rag.RetrieverConfig
	logger    *logrus.Logger
}

// NewSearchHandler creates a new search handler. The defaults fill in
// limit and score threshold when a request leaves them unset.
func NewSearchHandler(retriever Retriever, defaults *rag.RetrieverConfig, logger *logrus.Logger) *SearchHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &SearchHandler{
		retriever: retriever,
		defaults:  defaults,
		logger:    logger,
	}
}

// SearchRequest represents a retrieval request.
type SearchRequest struct {
	Query          string                 `json:"query" binding:"required"`
	Limit          int                    `json:"limit"`
	ScoreThreshold float32                `json:"score_threshold"`
	Filters        map[string]interface{} `json:"filters"`
}

// Search retrieves ranked passages for a question.
// POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := qdrant.DefaultSearchOptions().
		WithLimit(h.defaults.DefaultLimit).
		WithScoreThreshold(h.defaults.ScoreThreshold)
	if req.Limit > 0 {
		opts.WithLimit(req.Limit)
	}
	if req.ScoreThreshold > 0 {
		opts.WithScoreThreshold(req.ScoreThreshold)
	}
	if len(req.Filters) > 0 {
		opts.WithFilter(req.Filters)
	}

	results, err := h.retriever.Retrieve(c.Request.Context(), req.Query, opts)
	if err != nil {
		h.logger.WithError(err).Error("Search failed")
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}
