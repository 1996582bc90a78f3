package audit

import (
	"context"
	"log/slog"

	id "taskboard/pkg/domain"
	"taskboard/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only: events go
// to the store first and are then offered to the outbox for asynchronous
// sinks such as Kafka.
type Publisher struct {
	store  Store
	outbox chan<- Event
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

// WithOutbox forwards every stored event to ch without blocking. Events are
// dropped, with a warning, when ch is full.
func WithOutbox(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.outbox = ch
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = requestcontext.Now(ctx)
	}
	if base.RequestID == "" {
		base.RequestID = requestcontext.RequestID(ctx)
	}
	if base.ClientIP == "" {
		base.ClientIP = requestcontext.ClientIP(ctx)
	}
	if err := p.store.Append(ctx, base); err != nil {
		return err
	}
	if p.outbox == nil {
		return nil
	}
	select {
	case p.outbox <- base:
	default:
		p.logger.WarnContext(ctx, "audit outbox full, dropping event",
			"action", base.Action,
			"board_id", base.BoardID.String(),
		)
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, boardID id.BoardID) ([]Event, error) {
	return p.store.ListByBoard(ctx, boardID)
}
