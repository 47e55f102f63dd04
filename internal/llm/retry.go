package llm

import (
	"context"
	"math"
	"time"
)

// retryableStatus reports whether a completion service status warrants
// another attempt. Rate limiting and server-side failures do, everything
// else is final.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// backoff waits out the exponential delay for a finished attempt, or
// returns early when the context ends.
func backoff(ctx context.Context, base time.Duration, attempt int) error {
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
