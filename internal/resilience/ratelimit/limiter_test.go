package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	l := New(0, 5)
	assert.False(t, l.Enabled())

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestNilLimiter(t *testing.T) {
	var l *Limiter
	assert.False(t, l.Enabled())
	assert.NoError(t, l.Wait(context.Background()))
}

func TestWait_Paces(t *testing.T) {
	l := New(20, 1) // one token every 50ms
	require.True(t, l.Enabled())

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestWait_ContextCanceled(t *testing.T) {
	l := New(0.001, 1)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, l.Wait(ctx))
}

func TestNew_BurstFloor(t *testing.T) {
	l := New(1, 0)
	assert.NoError(t, l.Wait(context.Background()))
}
