package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSparseEncoderUnknownModel(t *testing.T) {
	enc, err := NewSparseEncoder("bm25-external")
	require.Error(t, err)
	assert.Nil(t, enc)
	assert.Contains(t, err.Error(), "unknown sparse model")
}

func TestSparseEncodeDeterministic(t *testing.T) {
	enc, err := NewSparseEncoder("lexical-v1")
	require.NoError(t, err)

	text := "Common symptoms of lung cancer include persistent cough."
	first := enc.Encode(text)
	second := enc.Encode(text)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSparseEncodeCaseFolding(t *testing.T) {
	enc, err := NewSparseEncoder("lexical-v1")
	require.NoError(t, err)

	assert.Equal(t, enc.Encode("Lung Cancer"), enc.Encode("lung cancer"))
}

func TestSparseEncodeDropsStopwordsAndShortTerms(t *testing.T) {
	enc, err := NewSparseEncoder("lexical-v1")
	require.NoError(t, err)

	weights := enc.Encode("What is the treatment?")
	assert.Len(t, weights, 1)
	assert.Equal(t, float32(1), weights[termID("treatment")])

	assert.Empty(t, enc.Encode("is the a of"))
}

func TestSparseEncodeTermFrequency(t *testing.T) {
	enc, err := NewSparseEncoder("lexical-v1")
	require.NoError(t, err)

	weights := enc.Encode("cancer screening, cancer staging, cancer treatment")
	assert.Equal(t, float32(3), weights[termID("cancer")])
	assert.Equal(t, float32(1), weights[termID("screening")])
}

func TestSparseEncodeDistinctTermsDistinctIDs(t *testing.T) {
	enc, err := NewSparseEncoder("lexical-v1")
	require.NoError(t, err)

	weights := enc.Encode("chemotherapy radiotherapy immunotherapy")
	assert.Len(t, weights, 3)
}
