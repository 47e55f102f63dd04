package rag

import (
	"strings"

	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/llm"
	"dev.oncora.assist/internal/tokens"
)

// ContextDelimiter separates chunk texts in the assembled context block.
const ContextDelimiter = "\n\n"

// Assembler joins retrieved chunks into a single context block that fits the
// model's context window.
type Assembler struct {
	counter *tokens.Counter
	logger  *logrus.Logger
}

// NewAssembler creates an assembler using the given token counter.
func NewAssembler(counter *tokens.Counter, logger *logrus.Logger) *Assembler {
	if counter == nil {
		counter = &tokens.Counter{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Assembler{
		counter: counter,
		logger:  logger,
	}
}

// Budget returns the token room left for retrieved context once the prompt
// template, the question and the completion reservation are accounted for.
// Never negative.
func (a *Assembler) Budget(cfg *llm.Config, question string) int {
	rendered := llm.Render(cfg.SystemPrompt, "", question)
	budget := cfg.NCtx - a.counter.Count(rendered) - cfg.MaxTokens
	if budget < 0 {
		budget = 0
	}
	return budget
}

// Assemble dedupes results by chunk id keeping the first occurrence, joins
// the texts in ranked order and truncates by dropping whole lowest-ranked
// chunks until the block fits within budget tokens. Chunks are never split.
// It returns the context block and the chunks included in it; both are empty
// when nothing fits.
func (a *Assembler) Assemble(results []Result, budget int) (string, []Result) {
	if len(results) == 0 || budget <= 0 {
		return "", nil
	}

	seen := make(map[string]struct{}, len(results))
	kept := make([]Result, 0, len(results))
	for _, result := range results {
		if _, ok := seen[result.ChunkID]; ok {
			continue
		}
		seen[result.ChunkID] = struct{}{}
		kept = append(kept, result)
	}
	deduped := len(kept)

	for len(kept) > 0 {
		texts := make([]string, len(kept))
		for i, result := range kept {
			texts[i] = result.Text
		}
		joined := strings.Join(texts, ContextDelimiter)

		if a.counter.Count(joined) <= budget {
			if dropped := deduped - len(kept); dropped > 0 {
				a.logger.WithFields(logrus.Fields{
					"dropped": dropped,
					"kept":    len(kept),
					"budget":  budget,
				}).Debug("Truncated context to fit window")
			}
			return joined, kept
		}

		kept = kept[:len(kept)-1]
	}

	a.logger.WithField("budget", budget).Debug("No chunk fits the context window")
	return "", nil
}
