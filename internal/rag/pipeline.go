package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/conversation"
	"dev.oncora.assist/internal/llm"
	"dev.oncora.assist/internal/observability/metrics"
)

// PipelineOptions bundles the collaborators a Pipeline needs. Metrics and
// Logger are optional.
type PipelineOptions struct {
	Refiner   *Refiner
	Retriever *HybridRetriever
	Assembler *Assembler
	LLM       llm.Client
	LLMConfig *llm.Config
	History   *conversation.Store
	Metrics   *metrics.Collector
	Logger    *logrus.Logger
}

// Pipeline runs one full question answering turn per call: refine the
// follow-up, retrieve, assemble context, generate, then record the turn.
// Stages run sequentially; the first failing stage aborts the turn with its
// typed error and history stays untouched.
type Pipeline struct {
	refiner   *Refiner
	retriever *HybridRetriever
	assembler *Assembler
	llm       llm.Client
	llmConfig *llm.Config
	history   *conversation.Store
	metrics   *metrics.Collector
	logger    *logrus.Logger
}

// NewPipeline validates the options and creates a pipeline.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.Refiner == nil {
		return nil, fmt.Errorf("refiner is required")
	}
	if opts.Retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if opts.Assembler == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	if opts.LLM == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.LLMConfig == nil {
		return nil, fmt.Errorf("llm config is required")
	}
	if opts.History == nil {
		return nil, fmt.Errorf("history store is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	return &Pipeline{
		refiner:   opts.Refiner,
		retriever: opts.Retriever,
		assembler: opts.Assembler,
		llm:       opts.LLM,
		llmConfig: opts.LLMConfig,
		history:   opts.History,
		metrics:   opts.Metrics,
		logger:    logger,
	}, nil
}

// Ask answers one question within a session. An empty sessionID starts a
// fresh session whose id is returned in the answer. The turn is appended to
// history only after generation succeeds.
func (p *Pipeline) Ask(ctx context.Context, sessionID, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	history := p.history.History(sessionID)

	start := time.Now()
	question, err := p.refiner.Refine(ctx, query, history)
	p.observeStage(metrics.StageRefine, start, err)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	results, err := p.retriever.Retrieve(ctx, question, nil)
	p.observeStage(metrics.StageRetrieve, start, err)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RetrievedResults.Observe(float64(len(results)))
	}

	start = time.Now()
	contextBlock, included := p.assembler.Assemble(results, p.assembler.Budget(p.llmConfig, question))
	p.observeStage(metrics.StageAssemble, start, nil)

	prompt := llm.Render(p.llmConfig.SystemPrompt, contextBlock, question)

	start = time.Now()
	output, err := p.llm.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	p.observeStage(metrics.StageGenerate, start, err)
	if err != nil {
		return nil, err
	}
	answer := strings.TrimSpace(output)

	p.history.Append(sessionID, question, answer)
	if p.metrics != nil {
		p.metrics.Turns.Inc()
	}

	sources := make([]Source, 0, len(included))
	for _, result := range included {
		sources = append(sources, Source{
			Title:   result.Title,
			Section: result.Section,
			Score:   result.Score,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"results":    len(results),
		"in_context": len(included),
	}).Debug("Turn completed")

	return &Answer{
		SessionID: sessionID,
		Question:  question,
		Text:      answer,
		Sources:   sources,
	}, nil
}

func (p *Pipeline) observeStage(stage string, start time.Time, err error) {
	if p.metrics == nil {
		return
	}
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.StageErrors.WithLabelValues(stage).Inc()
	}
}
