// Oncora bot: an interactive terminal session against the question
// answering pipeline.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/config"
	"dev.oncora.assist/internal/conversation"
	"dev.oncora.assist/internal/embedding"
	"dev.oncora.assist/internal/llm"
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

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if level, err := logrus.ParseLevel(os.Getenv("ONCORA_LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("Bot failed")
	}
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

	ctx := context.Background()
	if err := store.Connect(ctx); err != nil {
		return fmt.Errorf("connect to vector store: %w", err)
	}
	if err := store.EnsureCollection(ctx, cfg.Qdrant.CollectionConfig()); err != nil {
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

	history := conversation.NewStore(cfg.Conversation.MaxTurns, logger)

	pipeline, err := rag.NewPipeline(rag.PipelineOptions{
		Refiner:   rag.NewRefiner(completer, cfg.LLM.RefinementPrompt, logger),
		Retriever: retriever,
		Assembler: rag.NewAssembler(counter, logger),
		LLM:       completer,
		LLMConfig: &cfg.LLM,
		History:   history,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	fmt.Println("Oncora medical assistant. Ask a question, 'clear' to start over, 'quit' to exit.")

	sessionID := uuid.New().String()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "clear":
			history.Clear(sessionID)
			sessionID = uuid.New().String()
			fmt.Println("Conversation cleared.")
			continue
		}

		answer, err := pipeline.Ask(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		fmt.Println()
		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println()
			for _, src := range answer.Sources {
				fmt.Printf("  %s (score %.2f)\n", formatSource(src), src.Score)
			}
		}
		fmt.Println()
	}

	return scanner.Err()
}

func formatSource(src rag.Source) string {
	if src.Section != "" {
		return src.Title + " / " + src.Section
	}
	return src.Title
}
