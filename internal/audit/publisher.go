package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"zkvault/pkg/platform/circuit"
	"zkvault/pkg/requestcontext"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Sink forwards events to an external system. Sink failures are logged and
// never fail the emitting operation.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store       Store
	sinks       []guardedSink
	breakerOpts []circuit.Option
	logger      *slog.Logger
}

// guardedSink stops calling a sink that keeps failing until its cooldown ends.
type guardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithSink adds an external sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, guardedSink{sink: sink})
		}
	}
}

// WithSinkBreaker tunes the circuit breaker placed in front of every sink.
func WithSinkBreaker(opts ...circuit.Option) Option {
	return func(p *Publisher) {
		p.breakerOpts = append(p.breakerOpts, opts...)
	}
}

// WithLogger sets the logger used for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.sinks {
		p.sinks[i].breaker = circuit.New("audit-sink", p.breakerOpts...)
	}
	return p
}

// Emit fills in id, time, category and request id, then appends the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event = resolveContext(ctx, event)
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, gs := range p.sinks {
		p.forward(ctx, gs, event)
	}
	return nil
}

func (p *Publisher) forward(ctx context.Context, gs guardedSink, event Event) {
	if !gs.breaker.Allow() {
		return
	}
	if err := gs.sink.Publish(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "audit sink publish failed",
			"action", event.Action,
			"error", err,
		)
		if gs.breaker.RecordFailure() {
			p.logger.ErrorContext(ctx, "audit sink circuit opened; events are kept locally only")
		}
		return
	}
	if gs.breaker.RecordSuccess() {
		p.logger.InfoContext(ctx, "audit sink recovered")
	}
}

func resolveContext(ctx context.Context, event Event) Event {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	return event
}
