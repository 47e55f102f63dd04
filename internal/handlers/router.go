// Package handlers exposes the question answering pipeline over HTTP.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/llm"
	"dev.oncora.assist/internal/observability/metrics"
	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

// RouterConfig carries the handlers and middleware dependencies for the
// API router.
type RouterConfig struct {
	Health      *HealthHandler
	Search      *SearchHandler
	Generate    *GenerateHandler
	Ingest      *IngestHandler
	Metrics     *metrics.Collector
	MetricsPath string
}

// NewRouter builds the gin engine with all API routes registered.
func NewRouter(config RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	if config.Metrics != nil {
		r.Use(requestMetricsMiddleware(config.Metrics))
		path := config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(config.Metrics.Handler()))
	}

	if config.Health != nil {
		r.GET("/", config.Health.Check)
		r.GET("/health", config.Health.Check)
	}

	api := r.Group("/api/v1")
	{
		if config.Search != nil {
			api.POST("/search", config.Search.Search)
		}
		if config.Generate != nil {
			api.POST("/generate", config.Generate.Generate)
			api.DELETE("/sessions/:id", config.Generate.DeleteSession)
		}
		if config.Ingest != nil {
			api.POST("/ingest", config.Ingest.Ingest)
		}
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestMetricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		collector.RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// statusForError maps typed pipeline failures onto HTTP status codes.
// Store outages are service unavailability; model and embedding failures
// are upstream errors.
func statusForError(err error) int {
	switch {
	case qdrant.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	case embedding.IsEmbeddingError(err),
		llm.IsGenerationError(err),
		rag.IsRefinementError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
