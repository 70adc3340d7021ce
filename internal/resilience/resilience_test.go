package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transient() error {
	return NewTransientError(errors.New("http 503"), 503)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("validation failed")))
	assert.True(t, IsTransient(transient()))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(errors.New("dial tcp: i/o timeout")))

	// Wrapped transient errors are still detected.
	wrapped := &wrapErr{inner: transient()}
	assert.True(t, IsTransient(wrapped))
}

type wrapErr struct{ inner error }

func (e *wrapErr) Error() string { return "outer: " + e.inner.Error() }
func (e *wrapErr) Unwrap() error { return e.inner }

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return permanent
	})
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return transient()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, DefaultRetryConfig(), func(ctx context.Context) error {
		t.Fatal("fn must not run on cancelled context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCircuitOpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker("api", 2, time.Minute)
	ctx := context.Background()

	fail := func(ctx context.Context) error { return transient() }
	require.Error(t, b.Execute(ctx, fail))
	assert.Equal(t, CircuitClosed, b.State())

	require.Error(t, b.Execute(ctx, fail))
	assert.Equal(t, CircuitOpen, b.State())

	err := b.Execute(ctx, func(ctx context.Context) error {
		t.Fatal("call must be rejected while open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitIgnoresPermanentErrors(t *testing.T) {
	b := NewCircuitBreaker("api", 1, time.Minute)
	ctx := context.Background()

	err := b.Execute(ctx, func(ctx context.Context) error {
		return errors.New("not found")
	})
	require.Error(t, err)
	assert.Equal(t, CircuitClosed, b.State())
}

func TestCircuitHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker("api", 1, 10*time.Second)
	b.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, b.Execute(ctx, func(ctx context.Context) error { return transient() }))
	assert.Equal(t, CircuitOpen, b.State())

	// After the reset timeout a probe is admitted; success closes the circuit.
	now = now.Add(11 * time.Second)
	assert.Equal(t, CircuitHalfOpen, b.State())
	require.NoError(t, b.Execute(ctx, func(ctx context.Context) error { return nil }))
	assert.Equal(t, CircuitClosed, b.State())
}

func TestCircuitHalfOpenProbeFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewCircuitBreaker("api", 1, 10*time.Second)
	b.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, b.Execute(ctx, func(ctx context.Context) error { return transient() }))
	now = now.Add(11 * time.Second)
	require.Error(t, b.Execute(ctx, func(ctx context.Context) error { return transient() }))
	assert.Equal(t, CircuitOpen, b.State())
}
