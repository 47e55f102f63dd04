package qdrant

import (
	"errors"
	"fmt"
)

// StoreUnavailableError is returned when the vector store cannot be reached
// or a request keeps failing after the bounded retry budget is spent.
type StoreUnavailableError struct {
	Message    string
	Underlying error
}

func (e *StoreUnavailableError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("store unavailable: %s (caused by: %v)", e.Message, e.Underlying)
	}
	return fmt.Sprintf("store unavailable: %s", e.Message)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Underlying
}

// IsStoreUnavailable checks if the error is a StoreUnavailableError.
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var storeErr *StoreUnavailableError
	return errors.As(err, &storeErr)
}
