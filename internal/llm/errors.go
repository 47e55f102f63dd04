package llm

import (
	"errors"
	"fmt"
)

// GenerationError is returned when the completion service fails: transport
// failure, a non-OK status, or a malformed response.
type GenerationError struct {
	Message    string
	Underlying error
}

func (e *GenerationError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("generation error: %s (caused by: %v)", e.Message, e.Underlying)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Underlying
}

// IsGenerationError checks if the error is a GenerationError.
func IsGenerationError(err error) bool {
	if err == nil {
		return false
	}
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
