package events

import (
	"context"

	"github.com/rs/zerolog"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
)

// LogNotifier writes events to the structured log. Used when no broker is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	l.Logger.Info().
		Int64("event_id", event.ID).
		Str("topic", event.Topic).
		Int64("aggregate_id", event.AggregateID).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}
