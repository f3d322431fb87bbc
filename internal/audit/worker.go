package audit

import (
	"context"
	"log/slog"
)

// Queue decouples emitters from the publisher. Emit never blocks; when the
// buffer is full the event is dropped and logged.
type Queue struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{inbox: make(chan Event, size), logger: logger}
}

// Emit enqueues the event with request-scoped fields resolved from ctx.
func (q *Queue) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() || event.RequestID == "" {
		event = resolveContext(ctx, event)
	}
	select {
	case q.inbox <- event:
	default:
		q.logger.WarnContext(ctx, "audit queue full, dropping event", "action", event.Action)
	}
}

// Worker drains a Queue into a Publisher.
type Worker struct {
	publisher *Publisher
	queue     *Queue
}

func NewWorker(publisher *Publisher, queue *Queue) *Worker {
	return &Worker{publisher: publisher, queue: queue}
}

// Run blocks until ctx is done, then flushes whatever is already buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.queue.inbox:
			w.publish(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.queue.inbox:
			w.publish(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	if err := w.publisher.Emit(ctx, event); err != nil {
		w.publisher.logger.ErrorContext(ctx, "failed to persist audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
