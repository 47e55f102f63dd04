package rag

import (
	"errors"
	"fmt"
)

// RefinementError is returned when rewriting a follow-up question fails.
// The pipeline fails closed on it: retrieval never runs on the raw query.
type RefinementError struct {
	Message    string
	Underlying error
}

func (e *RefinementError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("refinement error: %s (caused by: %v)", e.Message, e.Underlying)
	}
	return fmt.Sprintf("refinement error: %s", e.Message)
}

func (e *RefinementError) Unwrap() error {
	return e.Underlying
}

// IsRefinementError checks if the error is a RefinementError.
func IsRefinementError(err error) bool {
	if err == nil {
		return false
	}
	var refErr *RefinementError
	return errors.As(err, &refErr)
}
