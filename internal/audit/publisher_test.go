package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkvault/pkg/platform/circuit"
	"zkvault/pkg/requestcontext"
)

type failingSink struct{ calls int }

func (f *failingSink) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker unreachable")
}

func TestPublisherEmit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-1"), now)

	t.Run("fills derived fields", func(t *testing.T) {
		store := NewInMemoryStore(0)
		p := NewPublisher(store)

		require.NoError(t, p.Emit(ctx, Event{Action: EventPermissionGranted, Origin: "https://shop.example"}))

		events, err := store.ListByOrigin(ctx, "https://shop.example")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.NotEmpty(t, events[0].ID)
		assert.Equal(t, now, events[0].Timestamp)
		assert.Equal(t, "req-1", events[0].RequestID)
		assert.Equal(t, CategoryCompliance, events[0].Category)
	})

	t.Run("sink failure does not fail emit", func(t *testing.T) {
		sink := &failingSink{}
		p := NewPublisher(NewInMemoryStore(0), WithSink(sink))

		require.NoError(t, p.Emit(ctx, Event{Action: EventSecretCreated}))
		assert.Equal(t, 1, sink.calls)
	})

	t.Run("failing sink is skipped once its circuit opens", func(t *testing.T) {
		sink := &failingSink{}
		store := NewInMemoryStore(0)
		p := NewPublisher(store, WithSink(sink), WithSinkBreaker(circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)))

		for range 5 {
			require.NoError(t, p.Emit(ctx, Event{Action: EventPermissionGranted, Origin: "https://shop.example"}))
		}
		assert.Equal(t, 2, sink.calls)

		events, err := store.ListByOrigin(ctx, "https://shop.example")
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})
}

func TestQueueWorker(t *testing.T) {
	store := NewInMemoryStore(0)
	queue := NewQueue(4, nil)
	worker := NewWorker(NewPublisher(store), queue)

	queue.Emit(context.Background(), Event{Action: EventAttestationGenerated, ClaimType: "country"})
	queue.Emit(context.Background(), Event{Action: EventAttestationDeleted, ClaimType: "country"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, worker.Run(ctx), context.Canceled)

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventAttestationGenerated, events[0].Action)
	assert.Equal(t, CategoryOperations, events[1].Category)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategorySecurity, EventSecretRegenerated.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}
