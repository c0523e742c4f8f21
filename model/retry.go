package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetryOptions configures the retry wrapper returned by WithRetry.
type RetryOptions struct {
	// MaxAttempts is the total number of Decide attempts (initial call
	// included). Values below 1 are treated as 1.
	MaxAttempts int
	// BaseDelay is the first backoff delay; each subsequent delay doubles.
	BaseDelay time.Duration
	// Retryable decides whether a failure is transient. Defaults to
	// IsRetryableError.
	Retryable func(error) bool
}

// WithRetry wraps a Model so transient provider failures are retried with
// bounded exponential backoff. Non-retryable errors and context cancellation
// pass through immediately; when attempts exhaust the last error is returned
// wrapped in a ClientError.
func WithRetry(m Model, optFns ...func(o *RetryOptions)) Model {
	opts := RetryOptions{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   IsRetryableError,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &retryModel{inner: m, opts: opts}
}

type retryModel struct {
	inner Model
	opts  RetryOptions
}

// Decide implements Model.
func (m *retryModel) Decide(ctx context.Context, req Request) (Decision, error) {
	var lastErr error

	for attempt := 0; attempt < m.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: base, 2*base, 4*base, ...
			delay := m.opts.BaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		decision, err := m.inner.Decide(ctx, req)
		if err == nil {
			return decision, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !m.opts.Retryable(err) {
			return nil, err
		}
	}

	return nil, &ClientError{
		Provider: m.inner.Info().Provider,
		Err:      fmt.Errorf("retries exhausted after %d attempts: %w", m.opts.MaxAttempts, lastErr),
	}
}

// Info implements Model.
func (m *retryModel) Info() Info { return m.inner.Info() }

// IsRetryableError reports whether a provider error looks transient: network
// resets, timeouts, rate limits and 5xx server responses.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, marker := range []string{
		"connection reset",
		"timeout",
		"deadline exceeded",
		"429",
		"rate limit",
		"500",
		"502",
		"503",
		"504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
