package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zkvault/internal/platform/middleware"
	"zkvault/internal/settings/models"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/httputil"
)

type Service interface {
	Get(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, patch models.Patch) (models.Settings, error)
}

type Handler struct {
	settings Service
	logger   *slog.Logger
}

func New(settings Service, logger *slog.Logger) *Handler {
	return &Handler{settings: settings, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/settings", h.handleGet)
	r.Put("/v1/settings", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load settings", "request_id", middleware.GetRequestID(r.Context()), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return
	}
	settings, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}
