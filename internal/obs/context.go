package obs

import (
	"context"
	"sync"

	"github.com/noah-isme/ecom-api/internal/common"
)

// routePatternKey is the context key storing matched route pattern.
type routePatternKey struct{}

type principalSlotKey struct{}

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext extracts the route pattern from context if present.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}

type principalSlot struct {
	mu  sync.Mutex
	p   common.Principal
	set bool
}

func (s *principalSlot) get() (common.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p, s.set
}

func withPrincipalSlot(ctx context.Context) (context.Context, *principalSlot) {
	slot := &principalSlot{}
	return context.WithValue(ctx, principalSlotKey{}, slot), slot
}

// ReportPrincipal makes the authenticated caller visible to the request logger,
// which sits outside the middleware that authenticates.
func ReportPrincipal(ctx context.Context, p common.Principal) {
	slot, ok := ctx.Value(principalSlotKey{}).(*principalSlot)
	if !ok {
		return
	}
	slot.mu.Lock()
	slot.p, slot.set = p, true
	slot.mu.Unlock()
}
