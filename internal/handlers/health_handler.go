package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// StoreHealth is the dependency probe the health endpoint runs.
type StoreHealth interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service and vector store health.
type HealthHandler struct {
	store  StoreHealth
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store StoreHealth, logger *logrus.Logger) *HealthHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// Check reports whether the service and its vector store are reachable.
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	details := gin.H{}

	if h.store != nil {
		if err := h.store.HealthCheck(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("Vector store health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
			details["qdrant"] = err.Error()
		} else {
			details["qdrant"] = "up"
		}
	}

	c.JSON(code, gin.H{
		"status":  status,
		"details": details,
	})
}
