package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		BaseBackoff:    1 * time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFraction: 0,
	}
}

func TestDoVal_SuccessFirstAttempt(t *testing.T) {
	var calls int
	got, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	got, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewRateLimitError(errors.New("429"), 0)
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want ok", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoVal_BoundedAttempts(t *testing.T) {
	// N consecutive rate limits must produce at most MaxRetries+1 calls.
	var calls int
	_, err := DoVal(context.Background(), fastConfig(3), func(_ context.Context) (int, error) {
		calls++
		return 0, NewRateLimitError(errors.New("429"), 0)
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (MaxRetries+1)", calls)
	}
}

func TestDoVal_NonRetryableFailsImmediately(t *testing.T) {
	var calls int
	_, err := DoVal(context.Background(), fastConfig(5), func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoVal_HonorsRetryAfterHint(t *testing.T) {
	var calls int
	hint := 30 * time.Millisecond

	start := time.Now()
	cfg := RetryConfig{
		MaxRetries:     1,
		BaseBackoff:    1 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: 0,
	}
	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (int, error) {
		calls++
		return 0, NewRateLimitError(errors.New("429"), hint)
	})
	elapsed := time.Since(start)

	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if elapsed < hint {
		t.Errorf("elapsed %v shorter than retry-after hint %v", elapsed, hint)
	}
}

func TestDoVal_ContextCancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	cfg := RetryConfig{
		MaxRetries:     10,
		BaseBackoff:    50 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: 0,
	}
	_, err := DoVal(ctx, cfg, func(_ context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewRateLimitError(errors.New("429"), 0)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestIsRateLimited(t *testing.T) {
	hint, ok := IsRateLimited(NewRateLimitError(errors.New("429"), 2*time.Second))
	if !ok || hint != 2*time.Second {
		t.Errorf("got (%v, %v), want (2s, true)", hint, ok)
	}

	wrapped := errors.Join(errors.New("outer"), NewRateLimitError(errors.New("429"), 0))
	if _, ok := IsRateLimited(wrapped); !ok {
		t.Error("wrapped rate limit not detected")
	}

	if _, ok := IsRateLimited(errors.New("plain")); ok {
		t.Error("plain error misdetected as rate limit")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewRateLimitError(errors.New("429"), 0)) {
		t.Error("rate limit should be retryable")
	}
	if !IsRetryable(errors.New("read tcp: i/o timeout")) {
		t.Error("i/o timeout should be retryable")
	}
	if IsRetryable(errors.New("invalid api key")) {
		t.Error("auth failure should not be retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil should not be retryable")
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	cfg := RetryConfig{
		BaseBackoff:    100 * time.Millisecond,
		MaxBackoff:     350 * time.Millisecond,
		JitterFraction: 0,
	}
	if d := backoffDelay(0, cfg); d != 100*time.Millisecond {
		t.Errorf("attempt 0: %v", d)
	}
	if d := backoffDelay(1, cfg); d != 200*time.Millisecond {
		t.Errorf("attempt 1: %v", d)
	}
	if d := backoffDelay(2, cfg); d != 350*time.Millisecond {
		t.Errorf("attempt 2 should cap at MaxBackoff: %v", d)
	}
}
