package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zkvault/internal/permission/models"
	"zkvault/internal/platform/middleware"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/httputil"
)

// Service defines the permission operations exposed for management. Grants
// are deliberately absent: only the broker records them.
type Service interface {
	Revoke(ctx context.Context, origin domain.Origin, claim domain.ClaimType) error
	ListDetailed(ctx context.Context, origin domain.Origin) ([]models.Grant, error)
	ListOrigins(ctx context.Context) ([]domain.Origin, error)
}

type Handler struct {
	permissions Service
	logger      *slog.Logger
}

func New(permissions Service, logger *slog.Logger) *Handler {
	return &Handler{permissions: permissions, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/v1/permissions", h.handleList)
		r.Delete("/v1/permissions/{claimType}", h.handleRevoke)
	})
}

type originGrants struct {
	Origin domain.Origin  `json:"origin"`
	Grants []models.Grant `json:"grants"`
}

type listResponse struct {
	Origins []originGrants `json:"origins"`
}

// handleList lists grants for ?origin=, or for every origin when absent.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var origins []domain.Origin
	if raw := r.URL.Query().Get("origin"); raw != "" {
		origin, err := domain.ParseOrigin(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		origins = []domain.Origin{origin}
	} else {
		all, err := h.permissions.ListOrigins(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to list origins", "request_id", middleware.GetRequestID(ctx), "error", err)
			httputil.WriteError(w, err)
			return
		}
		origins = all
	}

	resp := listResponse{Origins: make([]originGrants, 0, len(origins))}
	for _, origin := range origins {
		grants, err := h.permissions.ListDetailed(ctx, origin)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to list grants", "request_id", middleware.GetRequestID(ctx), "error", err)
			httputil.WriteError(w, err)
			return
		}
		if grants == nil {
			grants = []models.Grant{}
		}
		resp.Origins = append(resp.Origins, originGrants{Origin: origin, Grants: grants})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, err := domain.ParseClaimType(chi.URLParam(r, "claimType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	raw := r.URL.Query().Get("origin")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "origin query parameter is required"))
		return
	}
	origin, err := domain.ParseOrigin(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.permissions.Revoke(ctx, origin, claim); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke permission", "request_id", middleware.GetRequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
