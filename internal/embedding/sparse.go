package embedding

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// SparseEncoder produces sparse lexical vectors: lowercased terms are hashed
// to stable 32-bit ids (FNV-1a) and weighted by term frequency. Inverse
// document frequency is applied by the store's sparse index modifier, so the
// same encoder serves both ingestion and querying.
type SparseEncoder struct {
	minTermLen int
	stopwords  map[string]struct{}
}

// sparse encoder profiles selectable via the sparse_model option
const sparseModelLexicalV1 = "lexical-v1"

var englishStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "can",
	"do", "does", "for", "from", "had", "has", "have", "how", "if", "in",
	"is", "it", "its", "of", "on", "or", "that", "the", "their", "there",
	"these", "they", "this", "to", "was", "were", "what", "when", "which",
	"who", "will", "with",
}

// NewSparseEncoder creates the encoder for the given sparse model profile.
func NewSparseEncoder(model string) (*SparseEncoder, error) {
	if model != sparseModelLexicalV1 {
		return nil, fmt.Errorf("unknown sparse model %q", model)
	}

	stopwords := make(map[string]struct{}, len(englishStopwords))
	for _, w := range englishStopwords {
		stopwords[w] = struct{}{}
	}

	return &SparseEncoder{
		minTermLen: 2,
		stopwords:  stopwords,
	}, nil
}

// Encode maps text to term-id weights. An empty map is a valid result for
// text with no indexable terms.
func (e *SparseEncoder) Encode(text string) map[uint32]float32 {
	weights := make(map[uint32]float32)
	for _, term := range e.tokenize(text) {
		weights[termID(term)]++
	}
	return weights
}

func (e *SparseEncoder) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < e.minTermLen {
			continue
		}
		if _, ok := e.stopwords[f]; ok {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func termID(term string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return h.Sum32()
}
