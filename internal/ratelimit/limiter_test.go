package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(start time.Time) (*Limiter, *time.Time) {
	clock := start
	l := New()
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestLimiter_AllowsUpToBudget(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute), "attempt %d should pass", i+1)
	}

	assert.False(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute), "sixth attempt should be rejected")
	assert.False(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute), "seventh attempt should stay rejected")
}

func TestLimiter_WindowElapses(t *testing.T) {
	l, clock := newTestLimiter(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		l.Allow("login", "10.0.0.1", 5, 5*time.Minute)
	}
	require.False(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute))

	*clock = clock.Add(5*time.Minute + time.Second)
	assert.True(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute), "fresh window should admit again")
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		l.Allow("login", "10.0.0.1", 5, 5*time.Minute)
	}

	assert.True(t, l.Allow("login", "10.0.0.2", 5, 5*time.Minute), "other client unaffected")
	assert.True(t, l.Allow("register", "10.0.0.1", 3, 10*time.Minute), "other action unaffected")
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		l.Allow("login", "10.0.0.1", 5, 5*time.Minute)
	}
	require.False(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute))

	l.Reset("login", "10.0.0.1")
	assert.True(t, l.Allow("login", "10.0.0.1", 5, 5*time.Minute))
}
