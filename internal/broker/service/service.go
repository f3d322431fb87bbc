// Package service is the disclosure state machine. Every request moves
// received -> {no_attestation, expired, awaiting_permission, approved} ->
// {delivered, denied}, and every pending request is resolved exactly once.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/audit"
	"zkvault/internal/broker/metrics"
	"zkvault/internal/broker/models"
	"zkvault/internal/policy"
	"zkvault/internal/registration"
	"zkvault/pkg/domain"
	dErrors "zkvault/pkg/domain-errors"
	"zkvault/pkg/requestcontext"
)

const (
	defaultSurfaceTimeout = 5 * time.Minute
	defaultReapInterval   = 5 * time.Second
)

var errStale = errors.New("generation superseded")

type Service struct {
	attestations AttestationService
	permissions  PermissionService
	settings     SettingsProvider
	policy       ConsentPolicy
	registrar    Registrar
	surfaces     Surfaces

	pending        *registry
	surfaceTimeout time.Duration
	reapInterval   time.Duration
	now            func() time.Time
	inflight       sync.WaitGroup

	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSurfaceTimeout bounds how long a surface may hold a request.
func WithSurfaceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.surfaceTimeout = d
		}
	}
}

func WithReapInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reapInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(
	attestations AttestationService,
	permissions PermissionService,
	settings SettingsProvider,
	consent ConsentPolicy,
	registrar Registrar,
	surfaces Surfaces,
	opts ...Option,
) (*Service, error) {
	switch {
	case attestations == nil:
		return nil, errors.New("attestation service is required")
	case permissions == nil:
		return nil, errors.New("permission service is required")
	case settings == nil:
		return nil, errors.New("settings provider is required")
	case consent == nil:
		return nil, errors.New("consent policy is required")
	case registrar == nil:
		return nil, errors.New("registrar is required")
	case surfaces == nil:
		return nil, errors.New("surfaces are required")
	}
	s := &Service{
		attestations:   attestations,
		permissions:    permissions,
		settings:       settings,
		policy:         consent,
		registrar:      registrar,
		surfaces:       surfaces,
		pending:        newRegistry(),
		surfaceTimeout: defaultSurfaceTimeout,
		reapInterval:   defaultReapInterval,
		now:            time.Now,
		logger:         slog.Default(),
		tracer:         otel.Tracer("zkvault/broker"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle dispatches msg to its handler.
func (s *Service) Handle(ctx context.Context, msg Message) (Reply, error) {
	if msg == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "message is required")
	}
	ctx, span := s.tracer.Start(ctx, "broker."+msg.name(),
		trace.WithAttributes(attribute.String("request_id", requestcontext.RequestID(ctx))))
	defer span.End()

	reply, err := msg.dispatch(ctx, s)
	result := "ok"
	if err != nil {
		result = string(dErrors.CodeOf(err))
		if r := models.ReasonOf(err); r != "" {
			result = string(r)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	s.metrics.IncrementMessage(msg.name(), result)
	return reply, err
}

// Run evicts pending requests whose surface deadline passed, until ctx ends.
// On return every remaining request has been resolved as UserCancelled and
// in-flight work has finished.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Shutdown()
			return nil
		case <-ticker.C:
			s.Reap()
		}
	}
}

// Reap resolves every request whose surface deadline has passed.
func (s *Service) Reap() {
	for _, p := range s.pending.takeExpired(s.now()) {
		s.logger.InfoContext(p.ctx, "surface deadline passed",
			"request_id", p.id,
			"surface", p.surface,
		)
		s.finish(p, models.ReasonUserCancelled)
	}
}

// Shutdown cancels every pending request and waits for in-flight work.
func (s *Service) Shutdown() {
	for _, p := range s.pending.drain() {
		s.finish(p, models.ReasonUserCancelled)
	}
	s.inflight.Wait()
}

func (s *Service) requestDisclosure(ctx context.Context, req models.DisclosureRequest) (Reply, error) {
	switch {
	case req.RequestID == "":
		return nil, dErrors.New(dErrors.CodeValidation, "requestId is required")
	case req.Origin == "":
		return nil, dErrors.New(dErrors.CodeValidation, "origin is required")
	case !req.ClaimType.IsValid():
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unsupported claim type")
	}

	p := &pendingRequest{
		id:           req.RequestID,
		origin:       req.Origin,
		claim:        req.ClaimType,
		autoRegister: req.AutoRegister,
		backendURL:   req.BackendURL,
		state:        models.StateReceived,
		ctx:          context.WithoutCancel(ctx),
		responder:    make(chan models.Outcome, 1),
	}
	if !s.pending.reserve(p) {
		return nil, dErrors.New(dErrors.CodeConflict, "request id already pending")
	}
	s.metrics.SetPending(s.pending.len())
	ticket := &Ticket{
		RequestID: p.id,
		outcome:   p.responder,
		cancel:    func() { _ = s.cancel(p.id, models.ReasonUserCancelled) },
	}

	att, err := s.attestations.Find(ctx, req.ClaimType)
	if err != nil {
		s.abandon(p.id)
		return nil, err
	}
	switch {
	case att == nil:
		return s.openGeneration(ticket, models.StateNoAttestation)
	case att.IsExpired(s.now()):
		return s.openGeneration(ticket, models.StateExpired)
	}

	granted, err := s.permissions.IsGranted(ctx, req.Origin, req.ClaimType)
	if err != nil {
		s.abandon(p.id)
		return nil, err
	}
	if !granted {
		return s.openConsent(ticket, att)
	}

	taken, err := s.pending.take(p.id, nil)
	if err != nil {
		return nil, err
	}
	taken.attestation = att
	taken.state = models.StateApproved
	ticket.State = models.StateApproved
	s.deliver(taken)
	return ticket, nil
}

func (s *Service) openGeneration(ticket *Ticket, state models.State) (Reply, error) {
	err := s.pending.update(ticket.RequestID, func(p *pendingRequest) error {
		p.state = state
		s.openSurfaceLocked(p, models.SurfaceGeneration)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ticket.State = state
	ticket.Surface = models.SurfaceGeneration
	return ticket, nil
}

func (s *Service) openConsent(ticket *Ticket, att *attestation.Attestation) (Reply, error) {
	err := s.pending.update(ticket.RequestID, func(p *pendingRequest) error {
		p.attestation = att
		p.state = models.StateAwaitingPermission
		s.openSurfaceLocked(p, models.SurfaceConsent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	ticket.State = models.StateAwaitingPermission
	ticket.Surface = models.SurfaceConsent
	return ticket, nil
}

// openSurfaceLocked must run under the registry lock so a surface is never
// opened for a request that has already been resolved.
func (s *Service) openSurfaceLocked(p *pendingRequest, kind models.SurfaceKind) {
	now := s.now()
	p.surface = kind
	p.surfaceID = uuid.NewString()
	p.openedAt = now
	p.deadline = now.Add(s.surfaceTimeout)
	view := models.SurfaceView{
		ID:        p.surfaceID,
		RequestID: p.id,
		Kind:      kind,
		Origin:    p.origin,
		ClaimType: p.claim,
		OpenedAt:  p.openedAt,
		Deadline:  p.deadline,
	}
	if kind == models.SurfaceConsent && p.attestation != nil {
		d := attestation.DescribeDisclosure(p.attestation)
		view.Disclosure = &d
	}
	s.surfaces.Open(p.ctx, view)
}

func (s *Service) submitEvidence(ctx context.Context, id string, evidence attestation.Evidence) (Reply, error) {
	if evidence == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "evidence is required")
	}
	check := func(p *pendingRequest) error {
		switch {
		case !p.state.NeedsGeneration():
			return dErrors.New(dErrors.CodeConflict, "request is not waiting for evidence")
		case p.cancelGen != nil:
			return dErrors.New(dErrors.CodeConflict, "generation already running")
		case evidence.ClaimType() != p.claim:
			return dErrors.New(dErrors.CodeBadRequest, "evidence does not match the requested claim type")
		}
		return nil
	}
	if err := s.pending.update(id, check); err != nil {
		evidence.Scrub()
		return nil, err
	}

	prepared, err := s.attestations.Prepare(ctx, evidence)
	if err != nil {
		_ = s.pending.update(id, func(p *pendingRequest) error {
			p.lastError = dErrors.MessageOf(err)
			return nil
		})
		return nil, err
	}

	var (
		genCtx context.Context
		seq    uint64
		state  models.State
		claim  = evidence.ClaimType()
	)
	err = s.pending.update(id, func(p *pendingRequest) error {
		if err := check(p); err != nil {
			return err
		}
		var cancel context.CancelFunc
		genCtx, cancel = context.WithCancel(p.ctx)
		p.cancelGen = cancel
		p.genSeq++
		p.lastError = ""
		seq = p.genSeq
		state = p.state
		return nil
	})
	if err != nil {
		prepared.Scrub()
		return nil, err
	}

	s.inflight.Add(1)
	go s.generate(genCtx, id, seq, claim, prepared)
	return &Ack{RequestID: id, State: state}, nil
}

func (s *Service) generate(ctx context.Context, id string, seq uint64, claim domain.ClaimType, evidence attestation.Evidence) {
	defer s.inflight.Done()
	started := time.Now()
	att, err := s.attestations.Generate(ctx, claim, evidence)
	s.metrics.ObserveGeneration(time.Since(started))
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "generation failed for pending request",
			"request_id", id,
			"claim_type", claim,
			"error", err,
		)
		_ = s.pending.update(id, func(p *pendingRequest) error {
			if p.genSeq != seq || p.cancelGen == nil {
				return errStale
			}
			p.stopGeneration()
			p.lastError = generationMessage(err)
			return nil
		})
		return
	}

	if err := s.attestations.Save(ctx, att); err != nil {
		s.logger.ErrorContext(ctx, "failed to save generated attestation", "request_id", id, "error", err)
	}
	s.afterGeneration(ctx, id, seq, att)
}

// afterGeneration falls through to the permission check with the fresh
// attestation attached.
func (s *Service) afterGeneration(ctx context.Context, id string, seq uint64, att *attestation.Attestation) {
	origin, claim, ok := s.identify(id)
	if !ok {
		return
	}
	granted, err := s.permissions.IsGranted(ctx, origin, claim)
	if err != nil {
		s.logger.ErrorContext(ctx, "permission check failed; asking for consent", "request_id", id, "error", err)
		granted = false
	}
	if granted || s.autoApprove(ctx, origin, claim, att) {
		p, err := s.pending.take(id, func(p *pendingRequest) error {
			if p.genSeq != seq || p.cancelGen == nil {
				return errStale
			}
			return nil
		})
		if err != nil {
			return
		}
		p.stopGeneration()
		p.attestation = att
		p.state = models.StateApproved
		s.surfaces.Close(p.ctx, p.id)
		s.deliver(p)
		return
	}

	_ = s.pending.update(id, func(p *pendingRequest) error {
		if p.genSeq != seq || p.cancelGen == nil {
			return errStale
		}
		p.stopGeneration()
		p.attestation = att
		p.state = models.StateAwaitingPermission
		s.openSurfaceLocked(p, models.SurfaceConsent)
		return nil
	})
}

func (s *Service) identify(id string) (origin domain.Origin, claim domain.ClaimType, ok bool) {
	err := s.pending.update(id, func(p *pendingRequest) error {
		origin, claim = p.origin, p.claim
		return nil
	})
	return origin, claim, err == nil
}

func (s *Service) autoApprove(ctx context.Context, origin domain.Origin, claim domain.ClaimType, att *attestation.Attestation) bool {
	current, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "settings unavailable; asking for consent", "error", err)
		return false
	}
	in := policy.NewInput(origin, claim, current.AutoApprove, current.ExpiryDays, att.ExpiresAt, s.now())
	ok, err := s.policy.AutoApprove(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "consent policy failed; asking for consent", "error", err)
		return false
	}
	return ok
}

func (s *Service) approve(ctx context.Context, id string) (Reply, error) {
	p, err := s.pending.take(id, func(p *pendingRequest) error {
		if p.state != models.StateAwaitingPermission {
			return dErrors.New(dErrors.CodeConflict, "request is not awaiting permission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.surfaces.Close(ctx, id)
	if err := s.permissions.Grant(ctx, p.origin, p.claim); err != nil {
		s.logger.ErrorContext(ctx, "failed to record permission; delivering anyway", "request_id", id, "error", err)
	}
	p.state = models.StateApproved

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.deliver(p)
	}()
	return &Ack{RequestID: id, State: models.StateApproved}, nil
}

func (s *Service) deny(_ context.Context, id string) (Reply, error) {
	p, err := s.pending.take(id, nil)
	if err != nil {
		return nil, err
	}
	s.finish(p, models.ReasonPermissionDenied)
	return &Ack{RequestID: id, State: models.StateDenied}, nil
}

func (s *Service) surfaceClosed(_ context.Context, id string) (Reply, error) {
	if err := s.cancel(id, models.ReasonUserCancelled); err != nil {
		return nil, err
	}
	return &Ack{RequestID: id, State: models.StateDenied}, nil
}

func (s *Service) cancel(id string, reason models.Reason) error {
	p, err := s.pending.take(id, nil)
	if err != nil {
		return err
	}
	s.finish(p, reason)
	return nil
}

func (s *Service) pendingView(id string) (Reply, error) {
	var view models.PendingView
	err := s.pending.update(id, func(p *pendingRequest) error {
		view = p.view()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Pending{PendingView: view}, nil
}

// abandon drops a request that failed before any surface was opened. The
// caller gets the error directly, so nothing is sent on the responder.
func (s *Service) abandon(id string) {
	if _, err := s.pending.take(id, nil); err == nil {
		s.metrics.SetPending(s.pending.len())
	}
}

// finish resolves p as denied. A user who dismisses a generation surface
// after the engine refused their evidence gets ProofNotFound.
func (s *Service) finish(p *pendingRequest, reason models.Reason) {
	p.stopGeneration()
	if reason == models.ReasonUserCancelled && p.attestation == nil && p.lastError != "" {
		reason = models.ReasonProofNotFound
	}
	s.surfaces.Close(p.ctx, p.id)
	p.state = models.StateDenied
	s.resolve(p, models.Outcome{Err: models.NewDisclosureError(reason)})

	s.metrics.IncrementOutcome(string(reason))
	s.logger.InfoContext(p.ctx, "disclosure denied",
		"request_id", p.id,
		"origin", p.origin,
		"claim_type", p.claim,
		"reason", reason,
	)
	s.emit(p, audit.Event{Action: audit.EventDisclosureDenied, Decision: "denied", Reason: string(reason)})
}

// deliver registers if asked and replies with the public attestation.
// Registration failure never fails the disclosure.
func (s *Service) deliver(p *pendingRequest) {
	ctx := p.ctx
	disclosure := &models.Disclosure{
		RequestID:          p.id,
		Attestation:        models.NewAttestationView(p.attestation),
		RegistrationStatus: models.RegistrationNotRequested,
	}
	if p.autoRegister && p.backendURL != "" {
		res, err := s.registrar.Register(ctx, p.attestation, p.backendURL)
		switch {
		case err != nil:
			disclosure.RegistrationStatus = models.RegistrationFailed
			s.emit(p, audit.Event{Action: audit.EventRegistrationFailed, Reason: string(registration.KindOf(err))})
		case res.Status == registration.StatusSkipped:
			disclosure.RegistrationStatus = models.RegistrationSkipped
		default:
			disclosure.RegistrationStatus = models.RegistrationRegistered
			disclosure.Registration = res
			s.emit(p, audit.Event{Action: audit.EventRegistrationCompleted})
		}
	}

	p.state = models.StateDelivered
	s.resolve(p, models.Outcome{Disclosure: disclosure})

	s.metrics.IncrementOutcome("delivered")
	s.logger.InfoContext(ctx, "disclosure delivered",
		"request_id", p.id,
		"origin", p.origin,
		"claim_type", p.claim,
		"registration", disclosure.RegistrationStatus,
	)
	s.emit(p, audit.Event{Action: audit.EventDisclosureDelivered, Decision: "approved"})
}

func (s *Service) resolve(p *pendingRequest, o models.Outcome) {
	p.responder <- o
	s.metrics.SetPending(s.pending.len())
}

func (s *Service) emit(p *pendingRequest, e audit.Event) {
	if s.auditor == nil {
		return
	}
	e.Origin = string(p.origin)
	e.ClaimType = string(p.claim)
	s.auditor.Emit(p.ctx, e)
}

func (p *pendingRequest) stopGeneration() {
	if p.cancelGen != nil {
		p.cancelGen()
		p.cancelGen = nil
	}
}

// generationMessage is safe to show on the surface; it never carries
// evidence.
func generationMessage(err error) string {
	if msg := dErrors.MessageOf(err); msg != "" {
		return msg
	}
	return "proof generation failed"
}
