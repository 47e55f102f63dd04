// Oncora API server: retrieval augmented question answering over a
// medical corpus.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/config"
	"dev.oncora.assist/internal/conversation"
	"dev.oncora.assist/internal/corpus"
	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/handlers"
	"dev.oncora.assist/internal/llm"
	"dev.oncora.assist/internal/observability/metrics"
	"dev.oncora.assist/internal/rag"
	"dev.oncora.assist/internal/tokens"
	"dev.oncora.assist/internal/vectordb/qdrant"
)

var configFile = flag.String("config", "", "Path to configuration file (YAML)")

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Debug("Could not load .env file")
		}
	}

	flag.Parse()

	logger := newLogger()

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("Service failed")
	}
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	if level, err := logrus.ParseLevel(os.Getenv("ONCORA_LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func run(logger *logrus.Logger) error {
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	counter := tokens.NewCounter(logger)

	store, err := qdrant.NewClient(cfg.Qdrant.ClientConfig(), logger)
	if err != nil {
		return fmt.Errorf("create vector store client: %w", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.Connect(startupCtx); err != nil {
		return fmt.Errorf("connect to vector store: %w", err)
	}
	if err := store.EnsureCollection(startupCtx, cfg.Qdrant.CollectionConfig()); err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}

	provider, err := embedding.NewOllamaProvider(&cfg.Embedding, counter, logger)
	if err != nil {
		return fmt.Errorf("create embedding provider: %w", err)
	}

	completer, err := llm.NewOllamaClient(&cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("create completion client: %w", err)
	}

	retriever, err := rag.NewHybridRetriever(provider, store, cfg.RetrieverConfig(), logger)
	if err != nil {
		return fmt.Errorf("create retriever: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	history := conversation.NewStore(cfg.Conversation.MaxTurns, logger)

	pipeline, err := rag.NewPipeline(rag.PipelineOptions{
		Refiner:   rag.NewRefiner(completer, cfg.LLM.RefinementPrompt, logger),
		Retriever: retriever,
		Assembler: rag.NewAssembler(counter, logger),
		LLM:       completer,
		LLMConfig: &cfg.LLM,
		History:   history,
		Metrics:   collector,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	ingester, err := corpus.NewIngester(provider, store, cfg.Qdrant.CollectionName, cfg.Ingest.BatchSize, collector, logger)
	if err != nil {
		return fmt.Errorf("create ingester: %w", err)
	}
	chunker := corpus.NewChunker(counter, cfg.Embedding.MaxInputTokens)

	router := handlers.NewRouter(handlers.RouterConfig{
		Health:      handlers.NewHealthHandler(store, logger),
		Search:      handlers.NewSearchHandler(retriever, cfg.RetrieverConfig(), logger),
		Generate:    handlers.NewGenerateHandler(pipeline, history, logger),
		Ingest:      handlers.NewIngestHandler(ingester, chunker, cfg.Ingest.Dir, logger),
		Metrics:     collector,
		MetricsPath: cfg.Metrics.Path,
	})

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":       cfg.Server.Address(),
			"collection": cfg.Qdrant.CollectionName,
		}).Info("Starting Oncora server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := store.Close(); err != nil {
		logger.WithError(err).Warn("Error closing vector store client")
	}

	logger.Info("Server shutdown complete")
	return nil
}
