package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zkvault/internal/platform/middleware"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/httputil"
)

// Service is the vault surface exposed over HTTP.
type Service interface {
	IdentityHandle(ctx context.Context) (string, error)
	ExportMnemonic(ctx context.Context) ([]string, error)
	ImportMnemonic(ctx context.Context, words []string) (string, error)
}

type Handler struct {
	vault  Service
	logger *slog.Logger
}

func New(vault Service, logger *slog.Logger) *Handler {
	return &Handler{vault: vault, logger: logger}
}

// Register mounts the vault routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/vault/identity", h.handleIdentity)
	r.Get("/v1/vault/mnemonic", h.handleExportMnemonic)
	r.Post("/v1/vault/mnemonic", h.handleImportMnemonic)
}

type identityResponse struct {
	IdentityHandle string `json:"identityHandle"`
}

type mnemonicBody struct {
	Words []string `json:"words"`
}

func (h *Handler) handleIdentity(w http.ResponseWriter, r *http.Request) {
	handle, err := h.vault.IdentityHandle(r.Context())
	if err != nil {
		h.fail(w, r, "identity lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, identityResponse{IdentityHandle: handle})
}

func (h *Handler) handleExportMnemonic(w http.ResponseWriter, r *http.Request) {
	words, err := h.vault.ExportMnemonic(r.Context())
	if err != nil {
		h.fail(w, r, "mnemonic export failed", err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, mnemonicBody{Words: words})
}

func (h *Handler) handleImportMnemonic(w http.ResponseWriter, r *http.Request) {
	var req mnemonicBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return
	}
	handle, err := h.vault.ImportMnemonic(r.Context(), req.Words)
	if err != nil {
		h.fail(w, r, "mnemonic import failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, identityResponse{IdentityHandle: handle})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, msg, "request_id", middleware.GetRequestID(ctx), "code", dErrors.CodeOf(err))
	}
	httputil.WriteError(w, err)
}
