package events

import (
	"context"

	dbgen "github.com/noah-isme/ecom-api/internal/db/gen"
	"github.com/noah-isme/ecom-api/internal/resilience"
)

// GuardedNotifier trips a breaker when the downstream notifier keeps failing,
// so a broker outage costs one fast error per emit instead of a full timeout.
type GuardedNotifier struct {
	Next    Notifier
	Breaker *resilience.Breaker
}

// Notify implements Notifier.
func (g GuardedNotifier) Notify(ctx context.Context, event dbgen.DomainEvent) error {
	if g.Next == nil {
		return nil
	}
	if g.Breaker == nil {
		return g.Next.Notify(ctx, event)
	}
	return g.Breaker.Do(ctx, func(ctx context.Context) error {
		return g.Next.Notify(ctx, event)
	})
}
