package service

import (
	"context"
	"sync"
	"time"

	attestation "zkvault/internal/attestation/models"
	"zkvault/internal/broker/models"
	"zkvault/pkg/domain"
)

// pendingRequest is owned by the registry while it is registered. Whoever
// removes it from the registry owns its resolution and sends on responder.
type pendingRequest struct {
	id           string
	origin       domain.Origin
	claim        domain.ClaimType
	autoRegister bool
	backendURL   string

	state       models.State
	attestation *attestation.Attestation
	surface     models.SurfaceKind
	surfaceID   string
	openedAt    time.Time
	deadline    time.Time
	lastError   string

	// generation in flight; cancelGen is nil when idle.
	cancelGen context.CancelFunc
	genSeq    uint64

	// ctx carries request-scoped values for work that outlives the caller.
	ctx       context.Context
	responder chan models.Outcome
}

func (p *pendingRequest) view() models.PendingView {
	v := models.PendingView{
		RequestID:  p.id,
		Origin:     p.origin,
		ClaimType:  p.claim,
		State:      p.state,
		Surface:    p.surface,
		Deadline:   p.deadline,
		Generating: p.cancelGen != nil,
		LastError:  p.lastError,
	}
	if p.state == models.StateAwaitingPermission && p.attestation != nil {
		d := attestation.DescribeDisclosure(p.attestation)
		v.Disclosure = &d
	}
	return v
}

// registry maps request ids to pending requests for the broker's lifetime.
type registry struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
}

func newRegistry() *registry {
	return &registry{pending: make(map[string]*pendingRequest)}
}

// reserve registers p unless its id is already pending.
func (r *registry) reserve(p *pendingRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pending[p.id]; ok {
		return false
	}
	r.pending[p.id] = p
	return true
}

// update runs fn on the pending request under the registry lock.
func (r *registry) update(id string, fn func(p *pendingRequest) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return models.NewDisclosureError(models.ReasonRequestNotFound)
	}
	return fn(p)
}

// take removes and returns the pending request if check accepts it.
func (r *registry) take(id string, check func(p *pendingRequest) error) (*pendingRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return nil, models.NewDisclosureError(models.ReasonRequestNotFound)
	}
	if check != nil {
		if err := check(p); err != nil {
			return nil, err
		}
	}
	delete(r.pending, id)
	return p, nil
}

// takeExpired removes every pending request whose surface deadline passed.
func (r *registry) takeExpired(now time.Time) []*pendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pendingRequest
	for id, p := range r.pending {
		if !p.deadline.IsZero() && !now.Before(p.deadline) {
			delete(r.pending, id)
			out = append(out, p)
		}
	}
	return out
}

// drain removes every pending request.
func (r *registry) drain() []*pendingRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*pendingRequest, 0, len(r.pending))
	for id, p := range r.pending {
		delete(r.pending, id)
		out = append(out, p)
	}
	return out
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
