// Package handler exposes the retained audit trail read-only.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"zkvault/internal/audit"
	"zkvault/internal/platform/middleware"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/httputil"
)

const defaultLimit = 100

type Store interface {
	ListByOrigin(ctx context.Context, origin string) ([]audit.Event, error)
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.With(middleware.Timeout(10*time.Second)).Get("/v1/audit", h.handleList)
}

type listResponse struct {
	Events []audit.Event `json:"events"`
}

// handleList returns the newest ?limit= events, optionally for one ?origin=.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	var (
		events []audit.Event
		err    error
	)
	if raw := r.URL.Query().Get("origin"); raw != "" {
		origin, perr := domain.ParseOrigin(raw)
		if perr != nil {
			httputil.WriteError(w, perr)
			return
		}
		events, err = h.store.ListByOrigin(ctx, string(origin))
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
	} else {
		events, err = h.store.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events", "request_id", middleware.GetRequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Events: events})
}
