// internal/clients/retry.go
package clients

import (
	"context"
	"fmt"
	"time"

	"github.com/cogbench/cogbench/internal/logging"
)

// exhaustionMode selects what a retryPolicy does once every attempt has
// failed. The modes mirror the historical per-backend behaviors: the hosted
// API surfaces the error, the enterprise-hosted variant returns an empty
// response, and the generative backend returns an ERROR: sentinel.
type exhaustionMode int

const (
	exhaustFail exhaustionMode = iota
	exhaustEmpty
	exhaustSentinel
)

// retryPolicy retries a call a bounded number of times with an optional
// fixed delay between attempts.
type retryPolicy struct {
	maxAttempts int
	delay       time.Duration
	onExhausted exhaustionMode
}

// do invokes call until it succeeds or attempts run out, then applies the
// exhaustion mode. The delay honors context cancellation.
func (p retryPolicy) do(ctx context.Context, backend, model string, call func() (string, error)) (string, error) {
	attempts := p.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err
		logging.LogEvent("%s: attempt %d/%d for model %s failed: %v", backend, attempt, attempts, model, err)

		if attempt == attempts {
			break
		}
		if p.delay > 0 {
			logging.LogEvent("%s: waiting %s before retry", backend, p.delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}

	switch p.onExhausted {
	case exhaustEmpty:
		logging.LogEvent("%s: all %d attempts failed for model %s, returning empty response", backend, attempts, model)
		return "", nil
	case exhaustSentinel:
		logging.LogEvent("%s: all %d attempts failed for model %s, returning error sentinel", backend, attempts, model)
		return fmt.Sprintf("%s%v", ErrorSentinelPrefix, lastErr), nil
	default:
		return "", fmt.Errorf("%s: all %d attempts failed for model %s: %w", backend, attempts, model, lastErr)
	}
}
