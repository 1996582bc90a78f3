package audit

import (
	"context"
	"fmt"
	"log/slog"

	"taskboard/pkg/platform/circuit"
	"taskboard/pkg/platform/sentinel"
)

// ErrSinkUnavailable is returned while the sink's circuit is open.
var ErrSinkUnavailable = fmt.Errorf("audit sink: %w", sentinel.ErrUnavailable)

// GuardedSink stops calling a failing sink until its breaker lets a probe
// through, so a broker outage costs one timeout per cooldown instead of one
// per event.
type GuardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuardedSink(sink Sink, breaker *circuit.Breaker, logger *slog.Logger) *GuardedSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedSink{sink: sink, breaker: breaker, logger: logger}
}

func (g *GuardedSink) Publish(ctx context.Context, event Event) error {
	if !g.breaker.Allow() {
		return ErrSinkUnavailable
	}
	if err := g.sink.Publish(ctx, event); err != nil {
		if g.breaker.RecordFailure() {
			g.logger.WarnContext(ctx, "audit sink circuit opened",
				"breaker", g.breaker.Name(),
				"error", err,
			)
		}
		return err
	}
	if g.breaker.RecordSuccess() {
		g.logger.InfoContext(ctx, "audit sink circuit closed", "breaker", g.breaker.Name())
	}
	return nil
}
