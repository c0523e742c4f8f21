package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryanrai97861/cortexhub/core"
)

func TestWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	inner := NewMock()
	inner.QueueError(errors.New("rate limit exceeded"))
	inner.QueueDecision(FinalAnswer{Message: core.NewAgentMessage("ok")})

	m := WithRetry(inner, func(o *RetryOptions) { o.BaseDelay = time.Millisecond })

	decision, err := m.Decide(context.Background(), Request{Goal: "g"})
	require.NoError(t, err)
	answer, ok := decision.(FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "ok", answer.Message.Content)
	assert.Equal(t, 2, inner.Calls())
}

func TestWithRetry_NonRetryableFailsImmediately(t *testing.T) {
	inner := NewMock()
	inner.QueueError(errors.New("invalid api key"))

	m := WithRetry(inner, func(o *RetryOptions) { o.BaseDelay = time.Millisecond })

	_, err := m.Decide(context.Background(), Request{Goal: "g"})
	require.Error(t, err)
	assert.Equal(t, 1, inner.Calls())
}

func TestWithRetry_ExhaustionWrapsClientError(t *testing.T) {
	inner := NewMock()
	inner.QueueError(errors.New("503 service unavailable"))

	m := WithRetry(inner, func(o *RetryOptions) {
		o.MaxAttempts = 3
		o.BaseDelay = time.Millisecond
	})

	_, err := m.Decide(context.Background(), Request{Goal: "g"})
	require.Error(t, err)
	assert.Equal(t, 3, inner.Calls())

	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Contains(t, clientErr.Error(), "retries exhausted")
}

func TestWithRetry_ContextCancellationStopsBackoff(t *testing.T) {
	inner := NewMock()
	inner.QueueError(errors.New("timeout"))

	m := WithRetry(inner, func(o *RetryOptions) {
		o.MaxAttempts = 5
		o.BaseDelay = time.Hour
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := m.Decide(ctx, Request{Goal: "g"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.Calls())
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(errors.New("invalid request")))

	for _, msg := range []string{
		"connection reset by peer",
		"request timeout",
		"context deadline exceeded",
		"got 429 from upstream",
		"rate limit hit",
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
		"504 gateway timeout",
	} {
		assert.True(t, IsRetryableError(errors.New(msg)), msg)
	}
}

func TestMock_ReplaysScriptAndRepeatsLast(t *testing.T) {
	m := NewMock(
		FinalAnswer{Message: core.NewAgentMessage("first")},
		FinalAnswer{Message: core.NewAgentMessage("second")},
	)

	for _, want := range []string{"first", "second", "second"} {
		decision, err := m.Decide(context.Background(), Request{Goal: "g"})
		require.NoError(t, err)
		assert.Equal(t, want, decision.(FinalAnswer).Message.Content)
	}
	assert.Equal(t, 3, m.Calls())
}

func TestMock_EmptyScriptErrors(t *testing.T) {
	m := NewMock()
	_, err := m.Decide(context.Background(), Request{Goal: "g"})
	require.Error(t, err)

	var clientErr *ClientError
	assert.ErrorAs(t, err, &clientErr)
}
