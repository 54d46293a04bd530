package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Generator is the reasoning-service port. Every routing decision, agent
// step, and interview question goes through one of these.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Embedder turns a query string into a vector for similarity search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

var (
	// ErrServiceUnavailable marks a reasoning or embedding call that failed
	// because the backing service could not be reached. Retryable.
	ErrServiceUnavailable = errors.New("reasoning service unavailable")
	// ErrRateLimited marks a call rejected by provider rate limiting. Retryable.
	ErrRateLimited = errors.New("reasoning service rate limited")
	// ErrEmptyResponse marks a call that succeeded but produced no usable text.
	ErrEmptyResponse = errors.New("reasoning service returned empty response")
)

// Retryable reports whether the error is one of the transient service
// failures worth another attempt.
func Retryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimited)
}

const baseBackoff = 500 * time.Millisecond

// Retry invokes fn up to budget+1 times, backing off exponentially between
// attempts. Only transient service failures are retried; any other error is
// returned immediately. The last error is returned once the budget is spent.
func Retry(ctx context.Context, logger *zap.Logger, budget int, fn func(ctx context.Context) (string, error)) (string, error) {
	if budget < 0 {
		budget = 0
	}

	var lastErr error
	for attempt := 0; attempt <= budget; attempt++ {
		if attempt > 0 {
			if err := waitFor(ctx, baseBackoff<<(attempt-1)); err != nil {
				return "", err
			}
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}

		if !Retryable(err) {
			return "", err
		}

		lastErr = err
		if logger != nil {
			logger.Warn("retrying reasoning call",
				zap.Int("attempt", attempt+1),
				zap.Int("budget", budget),
				zap.Error(err),
			)
		}
	}

	return "", lastErr
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
