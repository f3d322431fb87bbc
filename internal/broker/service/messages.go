package service

import (
	"context"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/broker/models"
)

// Message is the closed set of inputs the broker accepts. Each variant
// carries its own handler.
type Message interface {
	name() string
	dispatch(ctx context.Context, s *Service) (Reply, error)
}

// Reply is the closed set of broker replies.
type Reply interface {
	isReply()
}

// RequestDisclosure starts a disclosure for an origin.
type RequestDisclosure struct {
	Request models.DisclosureRequest
}

// SubmitEvidence starts generation for a request waiting on a generation
// surface.
type SubmitEvidence struct {
	RequestID string
	Evidence  attestation.Evidence
}

// ApproveRequest records consent and delivers.
type ApproveRequest struct {
	RequestID string
}

// DenyRequest resolves the request as PermissionDenied.
type DenyRequest struct {
	RequestID string
}

// SurfaceClosed reports a surface dismissed without a decision.
type SurfaceClosed struct {
	RequestID string
}

// GetPending returns a snapshot of a pending request.
type GetPending struct {
	RequestID string
}

func (RequestDisclosure) name() string { return "request_disclosure" }
func (SubmitEvidence) name() string    { return "submit_evidence" }
func (ApproveRequest) name() string    { return "approve_request" }
func (DenyRequest) name() string       { return "deny_request" }
func (SurfaceClosed) name() string     { return "surface_closed" }
func (GetPending) name() string        { return "get_pending" }

func (m RequestDisclosure) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.requestDisclosure(ctx, m.Request)
}

func (m SubmitEvidence) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.submitEvidence(ctx, m.RequestID, m.Evidence)
}

func (m ApproveRequest) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.approve(ctx, m.RequestID)
}

func (m DenyRequest) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.deny(ctx, m.RequestID)
}

func (m SurfaceClosed) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.surfaceClosed(ctx, m.RequestID)
}

func (m GetPending) dispatch(ctx context.Context, s *Service) (Reply, error) {
	return s.pendingView(m.RequestID)
}

// Ticket is the reply to RequestDisclosure. The caller waits on it for the
// outcome.
type Ticket struct {
	RequestID string
	State     models.State
	Surface   models.SurfaceKind
	outcome   <-chan models.Outcome
	cancel    func()
}

// Ack acknowledges a surface action.
type Ack struct {
	RequestID string       `json:"requestId"`
	State     models.State `json:"state"`
}

// Pending wraps a pending request snapshot.
type Pending struct {
	models.PendingView
}

func (*Ticket) isReply()  {}
func (*Ack) isReply()     {}
func (*Pending) isReply() {}

// Wait blocks until the request resolves. If ctx ends first the request is
// cancelled as UserCancelled and Wait returns whatever outcome won.
func (t *Ticket) Wait(ctx context.Context) (*models.Disclosure, error) {
	select {
	case o := <-t.outcome:
		return o.Disclosure, o.Err
	case <-ctx.Done():
		t.cancel()
		o := <-t.outcome
		return o.Disclosure, o.Err
	}
}

// Done reports whether the outcome is already available.
func (t *Ticket) Done() bool {
	return len(t.outcome) > 0
}
