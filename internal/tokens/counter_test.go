package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountEstimateFallback(t *testing.T) {
	c := &Counter{}

	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 3, c.Count("one two three"))
	assert.Equal(t, 2, c.Count("  leading   trailing  "))
}

func TestCountMonotonicOnConcatenation(t *testing.T) {
	c := &Counter{}

	a := "persistent cough and chest pain"
	b := "unexplained weight loss"
	assert.Equal(t, c.Count(a)+c.Count(b), c.Count(a+" "+b))
}
