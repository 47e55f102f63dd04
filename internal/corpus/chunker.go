package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dev.oncora.assist/internal/tokens"
)

// DefaultChunkTokens bounds chunk sizes to what the embedding models accept.
const DefaultChunkTokens = 512

// Chunk is a section-bounded piece of a corpus document ready for embedding.
// The ID is stable for a given source, section and position, so re-ingesting
// an unchanged corpus replaces points instead of duplicating them.
type Chunk struct {
	ID      string
	Title   string
	Section string
	Text    string
	Source  string
}

// Chunker splits documents along markdown headings, packing paragraphs into
// chunks of at most maxTokens tokens.
type Chunker struct {
	counter   *tokens.Counter
	maxTokens int
}

// NewChunker creates a chunker. Non-positive maxTokens falls back to
// DefaultChunkTokens.
func NewChunker(counter *tokens.Counter, maxTokens int) *Chunker {
	if counter == nil {
		counter = &tokens.Counter{}
	}
	if maxTokens <= 0 {
		maxTokens = DefaultChunkTokens
	}
	return &Chunker{
		counter:   counter,
		maxTokens: maxTokens,
	}
}

// Split cuts a document into chunks. A heading starts a new section named by
// its text; paragraphs accumulate until the token bound would be exceeded.
// Paragraphs larger than the bound are split on word boundaries.
func (c *Chunker) Split(doc Document) []Chunk {
	source := filepath.Base(doc.Path)

	var chunks []Chunk
	section := ""
	sectionIndex := 0
	var paragraphs []string

	flush := func() {
		if len(paragraphs) == 0 {
			return
		}
		text := strings.Join(paragraphs, "\n\n")
		paragraphs = nil

		for _, piece := range c.fit(text) {
			chunks = append(chunks, Chunk{
				ID:      chunkID(source, section, sectionIndex),
				Title:   doc.Title,
				Section: section,
				Text:    piece,
				Source:  source,
			})
			sectionIndex++
		}
	}

	for _, block := range strings.Split(doc.Text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		// A block may open with a heading and carry body text below it.
		lines := strings.Split(block, "\n")
		if heading, ok := headingText(lines[0]); ok {
			flush()
			section = heading
			sectionIndex = 0
			block = strings.TrimSpace(strings.Join(lines[1:], "\n"))
			if block == "" {
				continue
			}
		}

		paragraphs = append(paragraphs, block)
		if c.counter.Count(strings.Join(paragraphs, "\n\n")) > c.maxTokens {
			// Keep the paragraph that broke the bound for the next chunk.
			last := paragraphs[len(paragraphs)-1]
			paragraphs = paragraphs[:len(paragraphs)-1]
			flush()
			paragraphs = append(paragraphs, last)
		}
	}
	flush()

	return chunks
}

// fit returns text unchanged when it observes the token bound, otherwise it
// splits on word boundaries into bounded pieces. Chunks are never cut inside
// a word.
func (c *Chunker) fit(text string) []string {
	if c.counter.Count(text) <= c.maxTokens {
		return []string{text}
	}

	words := strings.Fields(text)
	var pieces []string
	var current []string

	for _, word := range words {
		current = append(current, word)
		if c.counter.Count(strings.Join(current, " ")) > c.maxTokens && len(current) > 1 {
			pieces = append(pieces, strings.Join(current[:len(current)-1], " "))
			current = []string{word}
		}
	}
	if len(current) > 0 {
		pieces = append(pieces, strings.Join(current, " "))
	}

	return pieces
}

func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	heading := strings.TrimLeft(trimmed, "#")
	if heading == trimmed || !strings.HasPrefix(heading, " ") {
		return "", false
	}
	return strings.TrimSpace(heading), true
}

func chunkID(source, section string, index int) string {
	name := fmt.Sprintf("oncora:%s#%s:%d", source, section, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
