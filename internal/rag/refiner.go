package rag

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"dev.oncora.assist/internal/conversation"
	"dev.oncora.assist/internal/llm"
)

// Refiner rewrites follow-up questions into standalone ones using the
// session's prior turns.
type Refiner struct {
	llm      llm.Client
	template string
	logger   *logrus.Logger
}

// NewRefiner creates a refiner around a completion client and a refinement
// template carrying the {context} and {query} placeholders.
func NewRefiner(client llm.Client, template string, logger *logrus.Logger) *Refiner {
	if logger == nil {
		logger = logrus.New()
	}
	return &Refiner{
		llm:      client,
		template: template,
		logger:   logger,
	}
}

// Refine returns the standalone form of query. With no history the raw
// query is returned unchanged and no model call is made.
func (r *Refiner) Refine(ctx context.Context, query string, history []conversation.Turn) (string, error) {
	if len(history) == 0 {
		return query, nil
	}

	prompt := llm.Render(r.template, renderHistory(history), query)

	output, err := r.llm.Complete(ctx, llm.CompletionRequest{Prompt: prompt})
	if err != nil {
		return "", &RefinementError{Message: "failed to rewrite follow-up question", Underlying: err}
	}

	refined := strings.TrimSpace(output)
	if refined == "" {
		return "", &RefinementError{Message: "model returned an empty rewrite"}
	}

	r.logger.WithFields(logrus.Fields{
		"turns":   len(history),
		"refined": refined[:min(80, len(refined))],
	}).Debug("Refined follow-up question")

	return refined, nil
}

// renderHistory serializes turns oldest first as alternating user and
// assistant lines.
func renderHistory(turns []conversation.Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("user: ")
		b.WriteString(turn.Question)
		b.WriteString("\nassistant: ")
		b.WriteString(turn.Answer)
	}
	return b.String()
}
