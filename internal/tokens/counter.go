// Package tokens provides token counting for context-window budgeting.
package tokens

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sirupsen/logrus"
)

const encodingName = "cl100k_base"

// Counter counts tokens in text. It uses a BPE encoding when available and
// falls back to a whitespace-field estimate when the encoding cannot be
// initialised (offline deployments).
type Counter struct {
	enc *tiktoken.Tiktoken
}

// NewCounter creates a token counter. Initialisation failure of the BPE
// encoding is not fatal; the counter degrades to an estimate.
func NewCounter(logger *logrus.Logger) *Counter {
	if logger == nil {
		logger = logrus.New()
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		logger.WithError(err).Warn("Token encoding unavailable, using word-count estimate")
		return &Counter{}
	}

	return &Counter{enc: enc}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c.enc != nil {
		return len(c.enc.Encode(text, nil, nil))
	}
	return len(strings.Fields(text))
}
