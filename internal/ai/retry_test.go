package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestRetryStopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad prompt")
	calls := 0

	_, err := Retry(context.Background(), zap.NewNop(), 3, func(context.Context) (string, error) {
		calls++
		return "", permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0

	_, err := Retry(context.Background(), zap.NewNop(), 2, func(context.Context) (string, error) {
		calls++
		return "", ErrRateLimited
	})

	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	// budget=2 means at most 3 total attempts.
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryRecoversWithinBudget(t *testing.T) {
	calls := 0

	out, err := Retry(context.Background(), zap.NewNop(), 2, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", ErrServiceUnavailable
		}
		return "answer", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "answer" {
		t.Fatalf("expected recovered answer, got %q", out)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Retry(ctx, zap.NewNop(), 5, func(context.Context) (string, error) {
		calls++
		cancel()
		return "", ErrServiceUnavailable
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no attempts after cancellation, got %d", calls)
	}
}
