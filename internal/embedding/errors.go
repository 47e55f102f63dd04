package embedding

import (
	"errors"
	"fmt"
)

// EmbeddingError is returned when text cannot be embedded: empty or
// oversized input, transport failure, or a malformed model response.
type EmbeddingError struct {
	Message    string
	Underlying error
}

func (e *EmbeddingError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("embedding error: %s (caused by: %v)", e.Message, e.Underlying)
	}
	return fmt.Sprintf("embedding error: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Underlying
}

// IsEmbeddingError checks if the error is an EmbeddingError.
func IsEmbeddingError(err error) bool {
	if err == nil {
		return false
	}
	var embErr *EmbeddingError
	return errors.As(err, &embErr)
}
