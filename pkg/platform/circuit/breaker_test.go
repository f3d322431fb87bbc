package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestBreaker_InitialState(t *testing.T) {
	b := New("audit-sink")
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "audit-sink", b.Name())
	assert.True(t, b.Allow())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	assert.False(t, b.RecordFailure())
	assert.False(t, b.RecordFailure())
	assert.True(t, b.RecordFailure())
	assert.True(t, b.IsOpen())
	assert.False(t, b.Allow())

	// already open
	assert.False(t, b.RecordFailure())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("test", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.RecordSuccess())

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("test", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(clock.now))

	b.RecordFailure()
	assert.False(t, b.Allow())

	clock.t = clock.t.Add(time.Minute)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "only one probe while half open")

	t.Run("failed probe reopens", func(t *testing.T) {
		assert.True(t, b.RecordFailure())
		assert.True(t, b.IsOpen())
	})

	t.Run("successful probe closes", func(t *testing.T) {
		clock.t = clock.t.Add(time.Minute)
		assert.True(t, b.Allow())
		assert.True(t, b.RecordSuccess())
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreaker_Reset(t *testing.T) {
	b := New("test", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}
