package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/broker/models"
	"zkvault/internal/broker/service"
	"zkvault/internal/platform/middleware"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/platform/httputil"
)

const maxSurfaceWait = 30 * time.Second

var validate = validator.New()

// Broker is the message entry point of the disclosure state machine.
type Broker interface {
	Handle(ctx context.Context, msg service.Message) (service.Reply, error)
}

// Surfaces lists what the interactive UI should currently show.
type Surfaces interface {
	List() []models.SurfaceView
	Changed() <-chan struct{}
}

type Handler struct {
	broker   Broker
	surfaces Surfaces
	logger   *slog.Logger
	schema   []byte
}

func New(broker Broker, surfaces Surfaces, logger *slog.Logger) (*Handler, error) {
	schema, err := generateSchema(&DisclosureRequest{})
	if err != nil {
		return nil, err
	}
	return &Handler{broker: broker, surfaces: surfaces, logger: logger, schema: schema}, nil
}

// Register mounts the broker routes. Disclosure requests and surface polling
// wait on the user, so they are not bounded by the request timeout. Every
// POST must be declared as JSON.
func (h *Handler) Register(r chi.Router) {
	r.With(middleware.ContentTypeJSON).Post("/v1/disclosures", h.handleDisclose)
	r.Get("/v1/surfaces", h.handleSurfaces)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10*time.Second), middleware.ContentTypeJSON)
		r.Get("/v1/requests/{id}", h.handlePending)
		r.Post("/v1/requests/{id}/evidence", h.handleEvidence)
		r.Post("/v1/requests/{id}/approve", h.handleAction(func(id string) service.Message { return service.ApproveRequest{RequestID: id} }))
		r.Post("/v1/requests/{id}/deny", h.handleAction(func(id string) service.Message { return service.DenyRequest{RequestID: id} }))
		r.Post("/v1/requests/{id}/close", h.handleAction(func(id string) service.Message { return service.SurfaceClosed{RequestID: id} }))
		r.Get("/v1/schemas/disclosure", h.handleSchema)
	})
}

// DisclosureRequest is what a relying origin sends to ask for a claim.
type DisclosureRequest struct {
	RequestID    string `json:"requestId,omitempty" validate:"omitempty,max=128" jsonschema:"maxLength=128,description=Caller chosen id; generated when absent"`
	ClaimType    string `json:"claimType" validate:"required,oneof=country email_domain age" jsonschema:"enum=country,enum=email_domain,enum=age"`
	Origin       string `json:"origin" validate:"required,url" jsonschema:"format=uri,description=Web origin of the relying party"`
	AutoRegister bool   `json:"autoRegister,omitempty"`
	BackendURL   string `json:"backendUrl,omitempty" validate:"omitempty,url" jsonschema:"format=uri,description=Registration endpoint used when autoRegister is set"`
}

func (req DisclosureRequest) toModel() (models.DisclosureRequest, error) {
	if err := validate.Struct(req); err != nil {
		return models.DisclosureRequest{}, validationError(err)
	}
	origin, err := domain.ParseOrigin(req.Origin)
	if err != nil {
		return models.DisclosureRequest{}, err
	}
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	return models.DisclosureRequest{
		RequestID:    id,
		Origin:       origin,
		ClaimType:    domain.ClaimType(req.ClaimType),
		AutoRegister: req.AutoRegister,
		BackendURL:   req.BackendURL,
	}, nil
}

func validationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return dErrors.Wrap(err, dErrors.CodeValidation, "invalid disclosure request")
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", f.Field(), f.Tag()))
	}
	return dErrors.New(dErrors.CodeValidation, strings.Join(msgs, "; "))
}

func generateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(v)
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return out, nil
}

// handleDisclose holds the connection until the request resolves. A client
// that disconnects cancels its request.
func (h *Handler) handleDisclose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body DisclosureRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid json payload"))
		return
	}
	req, err := body.toModel()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reply, err := h.broker.Handle(ctx, service.RequestDisclosure{Request: req})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	ticket, ok := reply.(*service.Ticket)
	if !ok {
		h.writeError(ctx, w, fmt.Errorf("unexpected reply %T", reply))
		return
	}
	disclosure, err := ticket.Wait(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, disclosure)
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	reply, err := h.broker.Handle(r.Context(), service.GetPending{RequestID: chi.URLParam(r, "id")})
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	reply, err := h.broker.Handle(ctx, service.GetPending{RequestID: id})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	pending := reply.(*service.Pending)

	var req attestation.EvidenceRequest
	if err := httputil.DecodeJSON(w, r, &req, attestation.MaxEvidenceBytes); err != nil {
		httputil.WriteError(w, err)
		return
	}
	evidence, err := req.ToEvidence(pending.ClaimType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reply, err = h.broker.Handle(ctx, service.SubmitEvidence{RequestID: id, Evidence: evidence})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, reply)
}

func (h *Handler) handleAction(msg func(id string) service.Message) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, err := h.broker.Handle(r.Context(), msg(chi.URLParam(r, "id")))
		if err != nil {
			h.writeError(r.Context(), w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reply)
	}
}

type surfacesResponse struct {
	Surfaces []models.SurfaceView `json:"surfaces"`
}

// handleSurfaces lists open surfaces. With ?wait=<duration> it first blocks
// until the set changes or the wait elapses.
func (h *Handler) handleSurfaces(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("wait"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil || wait <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "wait must be a positive duration"))
			return
		}
		wait = min(wait, maxSurfaceWait)
		changed := h.surfaces.Changed()
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-changed:
		case <-timer.C:
		case <-r.Context().Done():
			return
		}
	}
	list := h.surfaces.List()
	if list == nil {
		list = []models.SurfaceView{}
	}
	httputil.WriteJSON(w, http.StatusOK, surfacesResponse{Surfaces: list})
}

func (h *Handler) handleSchema(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.schema)
}

// writeError renders disclosure outcomes with their reason as the error
// code; everything else goes through the shared mapping.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var de *models.DisclosureError
	if errors.As(err, &de) {
		httputil.WriteJSON(w, httputil.ToHTTPStatus(de.Code()), httputil.ErrorResponse{
			Error:            string(de.Reason),
			ErrorDescription: de.Message(),
		})
		return
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "broker request failed", "request_id", middleware.GetRequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
