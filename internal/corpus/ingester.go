package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/observability/metrics"
	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

// DefaultBatchSize is the number of points written per upsert call.
const DefaultBatchSize = 32

// Store is the slice of the vector store client the ingester needs.
type Store interface {
	UpsertPoints(ctx context.Context, collection string, points []qdrant.Point) error
}

// Ingester embeds chunks and writes them to the vector store in batches.
type Ingester struct {
	provider   embedding.Provider
	store      Store
	collection string
	batchSize  int
	metrics    *metrics.Collector
	logger     *logrus.Logger
}

// NewIngester creates an ingester writing to the given collection. Metrics
// may be nil.
func NewIngester(provider embedding.Provider, store Store, collection string, batchSize int, collector *metrics.Collector, logger *logrus.Logger) (*Ingester, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Ingester{
		provider:   provider,
		store:      store,
		collection: collection,
		batchSize:  batchSize,
		metrics:    collector,
		logger:     logger,
	}, nil
}

// Ingest embeds every chunk with both models and upserts the points in
// batches. It returns the number of chunks written. The first failing chunk
// or batch aborts the run.
func (ing *Ingester) Ingest(ctx context.Context, chunks []Chunk) (int, error) {
	written := 0
	batch := make([]qdrant.Point, 0, ing.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ing.store.UpsertPoints(ctx, ing.collection, batch); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		written += len(batch)
		if ing.metrics != nil {
			ing.metrics.IngestedChunks.Add(float64(len(batch)))
		}
		batch = batch[:0]
		return nil
	}

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}

		dense, err := ing.provider.EmbedDense(ctx, chunk.Text)
		if err != nil {
			return written, fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
		}
		sparse, err := ing.provider.EmbedSparse(ctx, chunk.Text)
		if err != nil {
			return written, fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
		}

		batch = append(batch, qdrant.Point{
			ID: chunk.ID,
			Vector: qdrant.PointVectors{
				Dense:  dense,
				Sparse: qdrant.NewSparseVector(sparse),
			},
			Payload: map[string]interface{}{
				rag.PayloadText:    chunk.Text,
				rag.PayloadTitle:   chunk.Title,
				rag.PayloadSection: chunk.Section,
				rag.PayloadSource:  chunk.Source,
			},
		})

		if len(batch) == ing.batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}

	if err := flush(); err != nil {
		return written, err
	}

	ing.logger.WithFields(logrus.Fields{
		"collection": ing.collection,
		"chunks":     written,
	}).Info("Corpus ingested")

	return written, nil
}

// IngestDir loads, chunks and ingests every corpus file under dir.
func (ing *Ingester) IngestDir(ctx context.Context, dir string, chunker *Chunker) (int, error) {
	docs, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, fmt.Errorf("no corpus files found under %s", dir)
	}

	var chunks []Chunk
	for _, doc := range docs {
		chunks = append(chunks, chunker.Split(doc)...)
	}

	ing.logger.WithFields(logrus.Fields{
		"dir":       dir,
		"documents": len(docs),
		"chunks":    len(chunks),
	}).Info("Corpus loaded")

	return ing.Ingest(ctx, chunks)
}
