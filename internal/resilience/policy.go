package resilience

import (
	"context"
	"time"
)

// Policy is the call discipline for one provider: each attempt runs under
// Timeout and through Breaker, and transient failures are retried per Retry.
type Policy struct {
	Name    string
	Retry   RetryConfig
	Breaker *Breaker
	Timeout time.Duration
}

// NewPolicy builds a Policy that logs retries under name. A nil breaker
// disables circuit breaking and a zero timeout disables the per-attempt
// deadline.
func NewPolicy(name string, retry RetryConfig, breaker *Breaker, timeout time.Duration) Policy {
	if retry.OnRetry == nil {
		retry.OnRetry = RetryLogger(name, "call")
	}
	return Policy{Name: name, Retry: retry, Breaker: breaker, Timeout: timeout}
}

// NoRetry runs each call once with only the timeout applied.
func NoRetry(name string, timeout time.Duration) Policy {
	return Policy{Name: name, Retry: RetryConfig{MaxAttempts: 1}, Timeout: timeout}
}

// Run executes fn under the policy.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Call executes fn under p and returns its value.
func Call[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	attempt := func(ctx context.Context) (T, error) {
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		if p.Breaker != nil {
			return ExecuteVal(ctx, p.Breaker, fn)
		}
		return fn(ctx)
	}
	return DoVal(ctx, p.Retry, attempt)
}
