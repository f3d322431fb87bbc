package surface

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"zkvault/internal/broker/models"
)

func TestHub(t *testing.T) {
	ctx := context.Background()
	h := NewHub(nil)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	changed := h.Changed()
	h.Open(ctx, models.SurfaceView{RequestID: "b", Kind: models.SurfaceConsent, OpenedAt: t0.Add(time.Second)})
	h.Open(ctx, models.SurfaceView{RequestID: "a", Kind: models.SurfaceGeneration, OpenedAt: t0})

	select {
	case <-changed:
	default:
		t.Fatal("expected change notification")
	}

	list := h.List()
	if assert.Len(t, list, 2) {
		assert.Equal(t, "a", list[0].RequestID)
		assert.Equal(t, "b", list[1].RequestID)
	}

	h.Open(ctx, models.SurfaceView{RequestID: "a", Kind: models.SurfaceConsent, OpenedAt: t0})
	v, ok := h.Get("a")
	assert.True(t, ok)
	assert.Equal(t, models.SurfaceConsent, v.Kind)

	h.Close(ctx, "a")
	h.Close(ctx, "a")
	_, ok = h.Get("a")
	assert.False(t, ok)
	assert.Len(t, h.List(), 1)
}
