package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRetention(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the newest events once full", func(t *testing.T) {
		store := NewInMemoryStore(3)
		for i := range 5 {
			require.NoError(t, store.Append(ctx, Event{ID: fmt.Sprint(i), Origin: "https://shop.example"}))
		}

		events, err := store.ListRecent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, []string{"2", "3", "4"}, ids(events))

		events, err = store.ListRecent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "4"}, ids(events))

		events, err = store.ListByOrigin(ctx, "https://shop.example")
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "3", "4"}, ids(events))
	})

	t.Run("partially filled ring", func(t *testing.T) {
		store := NewInMemoryStore(4)
		require.NoError(t, store.Append(ctx, Event{ID: "a", Origin: "https://a.example"}))
		require.NoError(t, store.Append(ctx, Event{ID: "b", Origin: "https://b.example"}))

		events, err := store.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(events))

		events, err = store.ListByOrigin(ctx, "https://b.example")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids(events))
	})

	t.Run("non-positive capacity uses the default", func(t *testing.T) {
		store := NewInMemoryStore(0)
		for i := range DefaultRetention + 10 {
			require.NoError(t, store.Append(ctx, Event{ID: fmt.Sprint(i)}))
		}
		events, err := store.ListRecent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, events, DefaultRetention)
		assert.Equal(t, "10", events[0].ID)
	})
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}
