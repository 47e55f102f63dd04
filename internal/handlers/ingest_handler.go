package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/corpus"
)

// DirIngestor loads, chunks, embeds, and stores a corpus directory.
type DirIngestor interface {
	IngestDir(ctx context.Context, dir string, chunker *corpus.Chunker) (int, error)
}

// IngestHandler triggers corpus ingestion over the API.
type IngestHandler struct {
	ingester   DirIngestor
	chunker    *corpus.Chunker
	defaultDir string
	logger     *logrus.Logger
}

// NewIngestHandler creates a new ingest handler. The default directory
// is used when a request does not name one.
func NewIngestHandler(ingester DirIngestor, chunker *corpus.Chunker, defaultDir string, logger *logrus.Logger) *IngestHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &IngestHandler{
		ingester:   ingester,
		chunker:    chunker,
		defaultDir: defaultDir,
		logger:     logger,
	}
}

// IngestRequest represents a corpus ingestion request.
type IngestRequest struct {
	Dir string `json:"dir"`
}

// Ingest chunks, embeds, and upserts every corpus file in a directory.
// POST /api/v1/ingest
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	dir := req.Dir
	if dir == "" {
		dir = h.defaultDir
	}
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no corpus directory configured"})
		return
	}

	written, err := h.ingester.IngestDir(c.Request.Context(), dir, h.chunker)
	if err != nil {
		h.logger.WithError(err).WithField("dir", dir).Error("Corpus ingestion failed")
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "corpus ingested",
		"dir":     dir,
		"chunks":  written,
	})
}
