package common

import "context"

type ctxKey string

const principalKey ctxKey = "auth/principal"

// Role names carried in access tokens.
const (
	RoleUser   = "USER"
	RoleSeller = "SELLER"
	RoleAdmin  = "ADMIN"
)

// Principal identifies the authenticated caller.
type Principal struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// WithPrincipal stores the authenticated principal on the provided context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom extracts the authenticated principal from the context if present.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID <= 0 {
		return Principal{}, false
	}
	return p, true
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (int64, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}
