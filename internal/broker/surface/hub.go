// Package surface tracks the interactive surfaces the broker has opened so a
// UI can poll for them.
package surface

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"zkvault/internal/broker/models"
)

// Hub is an in-memory set of open surfaces keyed by request id.
type Hub struct {
	mu      sync.RWMutex
	open    map[string]models.SurfaceView
	changed chan struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		open:    make(map[string]models.SurfaceView),
		changed: make(chan struct{}),
		logger:  logger,
	}
}

// Open shows view, replacing any surface already open for the same request.
func (h *Hub) Open(ctx context.Context, view models.SurfaceView) {
	h.mu.Lock()
	h.open[view.RequestID] = view
	h.notifyLocked()
	h.mu.Unlock()
	h.logger.InfoContext(ctx, "surface opened",
		"request_id", view.RequestID,
		"surface", view.Kind,
		"origin", view.Origin,
	)
}

func (h *Hub) Close(ctx context.Context, requestID string) {
	h.mu.Lock()
	_, ok := h.open[requestID]
	delete(h.open, requestID)
	if ok {
		h.notifyLocked()
	}
	h.mu.Unlock()
	if ok {
		h.logger.InfoContext(ctx, "surface closed", "request_id", requestID)
	}
}

// List returns open surfaces, oldest first.
func (h *Hub) List() []models.SurfaceView {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.SurfaceView, 0, len(h.open))
	for _, v := range h.open {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].RequestID < out[j].RequestID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// Get returns the surface open for requestID.
func (h *Hub) Get(requestID string) (models.SurfaceView, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.open[requestID]
	return v, ok
}

// Changed returns a channel closed at the next open or close, for long polls.
func (h *Hub) Changed() <-chan struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.changed
}

func (h *Hub) notifyLocked() {
	close(h.changed)
	h.changed = make(chan struct{})
}
