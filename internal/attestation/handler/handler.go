package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zkvault/internal/attestation/models"
	"zkvault/internal/platform/middleware"
	"zkvault/pkg/domain"
	"zkvault/pkg/platform/httputil"
	"zkvault/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.Attestation, error)
	GenerateAndSave(ctx context.Context, claim domain.ClaimType, evidence models.Evidence) (*models.Attestation, error)
	Delete(ctx context.Context, claim domain.ClaimType) error
}

type Handler struct {
	attestations Service
	logger       *slog.Logger
}

func New(attestations Service, logger *slog.Logger) *Handler {
	return &Handler{attestations: attestations, logger: logger}
}

// Register mounts the attestation routes. Generation is not bounded by the
// request timeout since proving can take tens of seconds.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/attestations/{claimType}", h.handleGenerate)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/v1/attestations", h.handleList)
		r.Delete("/v1/attestations/{claimType}", h.handleDelete)
	})
}

// View is the public rendering of an attestation.
type View struct {
	*models.Attestation
	ProofHash string `json:"proofHash"`
	Expired   bool   `json:"expired"`
}

func NewView(att *models.Attestation, now time.Time) View {
	return View{Attestation: att, ProofHash: att.ProofHash(), Expired: att.IsExpired(now)}
}

type listResponse struct {
	Attestations []View `json:"attestations"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	atts, err := h.attestations.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list attestations", "request_id", middleware.GetRequestID(ctx), "error", err)
		httputil.WriteError(w, err)
		return
	}
	now := requestcontext.Now(ctx)
	resp := listResponse{Attestations: make([]View, 0, len(atts))}
	for _, att := range atts {
		resp.Attestations = append(resp.Attestations, NewView(att, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claim, err := domain.ParseClaimType(chi.URLParam(r, "claimType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.EvidenceRequest
	if err := httputil.DecodeJSON(w, r, &req, models.MaxEvidenceBytes); err != nil {
		httputil.WriteError(w, err)
		return
	}
	evidence, err := req.ToEvidence(claim)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	att, err := h.attestations.GenerateAndSave(ctx, claim, evidence)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NewView(att, requestcontext.Now(ctx)))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	claim, err := domain.ParseClaimType(chi.URLParam(r, "claimType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.attestations.Delete(r.Context(), claim); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
