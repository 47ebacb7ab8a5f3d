package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/sonnet-search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker("redis", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     20 * time.Millisecond,
		OnStateChange:    func(_ string, to State) { transitions = append(transitions, to) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: 10 * time.Millisecond})
	_ = cb.Execute(func() error { return errBoom })
	time.Sleep(15 * time.Millisecond)
	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}

func TestCircuitBreakerIgnoresNonFailures(t *testing.T) {
	errGone := errors.New("client gone")
	cb := NewCircuitBreaker("x", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Millisecond,
		IsFailure:        func(err error) bool { return !errors.Is(err, errGone) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return errGone }), errGone)
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(func() error { return errBoom })
	assert.Equal(t, StateOpen, cb.State())
	time.Sleep(15 * time.Millisecond)

	// An ignored error in half-open frees the trial slot without closing.
	assert.ErrorIs(t, cb.Execute(func() error { return errGone }), errGone)
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetry(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), "fetch", RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() error {
		attempts++
		if attempts < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = Retry(context.Background(), "fetch", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func() error {
		attempts++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, attempts)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := Retry(ctx, "fetch", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func() error {
		attempts++
		return errBoom
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetryPermanent(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), "fetch", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func() error {
		attempts++
		return Permanent(errBoom)
	})
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, IsPermanent(err))
	assert.Equal(t, 1, attempts)
	assert.NoError(t, Permanent(nil))
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)

	err = WithTimeout(context.Background(), time.Second, "fast", func(context.Context) error { return nil })
	assert.NoError(t, err)

	err = WithTimeout(context.Background(), 0, "none", func(context.Context) error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
}
