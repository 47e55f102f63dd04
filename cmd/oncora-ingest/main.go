// Oncora ingest: one-shot corpus ingestion into the vector collection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/config"
	"dev.oncora.assist/internal/corpus"
	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/tokens"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

var (
	configFile = flag.String("config", "", "Path to configuration file (YAML)")
	corpusDir  = flag.String("dir", "", "Corpus directory to ingest (overrides config)")
	reset      = flag.Bool("reset", false, "Drop and recreate the collection before ingesting")
)

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Debug("Could not load .env file")
		}
	}

	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if level, err := logrus.ParseLevel(os.Getenv("ONCORA_LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("Ingestion failed")
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dir := *corpusDir
	if dir == "" {
		dir = cfg.Ingest.Dir
	}
	if dir == "" {
		return fmt.Errorf("no corpus directory given, use -dir or ingest.dir")
	}

	counter := tokens.NewCounter(logger)

	store, err := qdrant.NewClient(cfg.Qdrant.ClientConfig(), logger)
	if err != nil {
		return fmt.Errorf("create vector store client: %w", err)
	}

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connect to vector store: %w", err)
	}

	collection := cfg.Qdrant.CollectionName
	if *reset {
		exists, err := store.CollectionExists(ctx, collection)
		if err != nil {
			return fmt.Errorf("check collection: %w", err)
		}
		if exists {
			if err := store.DeleteCollection(ctx, collection); err != nil {
				return fmt.Errorf("drop collection: %w", err)
			}
		}
	}
	if err := store.EnsureCollection(ctx, cfg.Qdrant.CollectionConfig()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	provider, err := embedding.NewOllamaProvider(&cfg.Embedding, counter, logger)
	if err != nil {
		return fmt.Errorf("create embedding provider: %w", err)
	}

	ingester, err := corpus.NewIngester(provider, store, collection, cfg.Ingest.BatchSize, nil, logger)
	if err != nil {
		return fmt.Errorf("create ingester: %w", err)
	}
	chunker := corpus.NewChunker(counter, cfg.Embedding.MaxInputTokens)

	written, err := ingester.IngestDir(ctx, dir, chunker)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"dir":        dir,
		"collection": collection,
		"chunks":     written,
	}).Info("Corpus ingestion complete")

	count, err := store.CountPoints(ctx, collection, nil)
	if err != nil {
		logger.WithError(err).Warn("Could not count collection points")
		return nil
	}
	logger.WithField("points", count).Info("Collection size")

	return nil
}
