package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/conversation"
	"dev.oncora.assist/internal/rag"
)

// Asker answers a question within a session.
type Asker interface {
	Ask(ctx context.Context, sessionID, query string) (*rag.Answer, error)
}

// GenerateHandler exposes the full question answering pipeline and the
// session memory it maintains.
type GenerateHandler struct {
	pipeline Asker
	history  *conversation.Store
	logger   *logrus.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(pipeline Asker, history *conversation.Store, logger *logrus.Logger) *GenerateHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &GenerateHandler{
		pipeline: pipeline,
		history:  history,
		logger:   logger,
	}
}

// GenerateRequest represents a question answering request. SessionID is
// optional; omitting it starts a fresh session whose id is returned.
type GenerateRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// Generate answers a question grounded in the corpus.
// POST /api/v1/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.pipeline.Ask(c.Request.Context(), req.SessionID, req.Query)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", req.SessionID).Error("Generation failed")
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, answer)
}

// DeleteSession forgets the conversation history of one session.
// DELETE /api/v1/sessions/:id
func (h *GenerateHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")

	if !h.history.Clear(sessionID) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "session not found",
			"session_id": sessionID,
		})
		return
	}

	h.logger.WithField("session_id", sessionID).Info("Session cleared")
	c.JSON(http.StatusOK, gin.H{
		"message":    "session cleared",
		"session_id": sessionID,
	})
}
