package device

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCancelledContext(t *testing.T) {
	b := NewBase("test", "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	ok := b.Track(ctx, func() bool { called = true; return true })
	assert.False(t, ok)
	assert.False(t, called, "cancelled update must not run the body")
}

func TestTrackTelemetryOnlyOnSuccess(t *testing.T) {
	b := NewBase("test", "", nil)
	ctx := context.Background()

	require.True(t, b.Track(ctx, func() bool {
		time.Sleep(2 * time.Millisecond)
		return true
	}))
	first := b.Telemetry()
	assert.False(t, first.LastSuccess.IsZero())
	assert.GreaterOrEqual(t, first.Duration, 2*time.Millisecond)

	// A failed update leaves the previous reading visible.
	require.False(t, b.Track(ctx, func() bool { return false }))
	assert.Equal(t, first, b.Telemetry())

	// The next success measures the gap since the previous one.
	require.True(t, b.Track(ctx, func() bool { return true }))
	second := b.Telemetry()
	assert.Greater(t, second.Interval, time.Duration(0))
}

func TestVariablesLazySingleInstance(t *testing.T) {
	declared := 0
	b := NewBase("test", "", func(r *Registry) {
		declared++
		r.Register("x", 1, "")
	})

	r1 := b.Variables()
	r2 := b.Variables()
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, declared)
}

func TestGuardedRecoversPanic(t *testing.T) {
	ok := Guarded("test", func() bool { panic("sdk exploded") })
	assert.False(t, ok)
	assert.True(t, Guarded("test", func() bool { return true }))
}
