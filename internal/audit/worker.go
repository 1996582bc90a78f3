package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultDrainTimeout bounds how long Run keeps publishing buffered events
// after its context is cancelled.
const DefaultDrainTimeout = 5 * time.Second

// Sink receives audit events outside the request path.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher outbox into a sink. A failed publish is logged
// and skipped so a broker outage never blocks board commands.
type Worker struct {
	sink         Sink
	inbox        <-chan Event
	logger       *slog.Logger
	drainTimeout time.Duration
}

type WorkerOption func(*Worker)

// WithDrainTimeout sets the shutdown grace period. Zero skips draining.
func WithDrainTimeout(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d >= 0 {
			w.drainTimeout = d
		}
	}
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{sink: sink, inbox: inbox, logger: logger, drainTimeout: DefaultDrainTimeout}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is cancelled or the inbox is closed. On cancellation
// it publishes whatever is still buffered, within the drain timeout, and then
// returns ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx)
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.publish(ctx, event)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	if w.drainTimeout == 0 {
		return
	}
	graceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.drainTimeout)
	defer cancel()

	drained := 0
	defer func() {
		if drained > 0 {
			w.logger.InfoContext(graceCtx, "audit outbox drained on shutdown", "events", drained)
		}
	}()
	for {
		if graceCtx.Err() != nil {
			if left := len(w.inbox); left > 0 {
				w.logger.WarnContext(graceCtx, "audit drain timed out, events dropped", "events", left)
			}
			return
		}
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.publish(graceCtx, event)
			drained++
		default:
			return
		}
	}
}

func (w *Worker) publish(ctx context.Context, event Event) {
	err := w.sink.Publish(ctx, event)
	if errors.Is(err, ErrSinkUnavailable) {
		w.logger.DebugContext(ctx, "audit sink unavailable, event skipped",
			"action", event.Action,
			"board_id", event.BoardID.String(),
		)
		return
	}
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to publish audit event",
			"error", err,
			"action", event.Action,
			"board_id", event.BoardID.String(),
		)
	}
}
