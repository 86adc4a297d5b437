// internal/clients/retry_test.go
package clients

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRetryPolicyStopsAfterSuccess(t *testing.T) {
	calls := 0
	policy := retryPolicy{maxAttempts: 3, onExhausted: exhaustFail}
	text, err := policy.do(context.Background(), "test", "m", func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if text != "ok" || calls != 2 {
		t.Fatalf("expected success on second call, got text=%q calls=%d", text, calls)
	}
}

func TestRetryPolicyFailMode(t *testing.T) {
	calls := 0
	policy := retryPolicy{maxAttempts: 3, onExhausted: exhaustFail}
	_, err := policy.do(context.Background(), "test", "m", func() (string, error) {
		calls++
		return "", errors.New("boom")
	})
	if err == nil {
		t.Fatalf("expected an error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected last error in chain, got %v", err)
	}
}

func TestRetryPolicyEmptyMode(t *testing.T) {
	policy := retryPolicy{maxAttempts: 2, onExhausted: exhaustEmpty}
	text, err := policy.do(context.Background(), "test", "m", func() (string, error) {
		return "", errors.New("boom")
	})
	if err != nil {
		t.Fatalf("empty mode must not return an error, got %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty response, got %q", text)
	}
}

func TestRetryPolicySentinelMode(t *testing.T) {
	policy := retryPolicy{maxAttempts: 2, onExhausted: exhaustSentinel}
	text, err := policy.do(context.Background(), "test", "m", func() (string, error) {
		return "", errors.New("quota exceeded")
	})
	if err != nil {
		t.Fatalf("sentinel mode must not return an error, got %v", err)
	}
	if !strings.HasPrefix(text, ErrorSentinelPrefix) {
		t.Fatalf("expected sentinel prefix, got %q", text)
	}
	if !strings.Contains(text, "quota exceeded") {
		t.Fatalf("expected cause in sentinel, got %q", text)
	}
}

func TestRetryPolicyHonorsCancellationDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	policy := retryPolicy{maxAttempts: 2, delay: time.Hour, onExhausted: exhaustFail}
	_, err := policy.do(ctx, "test", "m", func() (string, error) {
		return "", errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestRetryPolicyZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	policy := retryPolicy{onExhausted: exhaustFail}
	if _, err := policy.do(context.Background(), "test", "m", func() (string, error) {
		calls++
		return "fine", nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}
