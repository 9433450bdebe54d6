package middleware

import (
	"context"

	"github.com/DELTAJoSch/Horus/internal/domain"
)

// Principal is the authenticated identity of a request, resolved from the
// session cookie. It is carried in the request context, never in process
// state.
type Principal struct {
	Name  string
	Email string
	Role  domain.Role
}

type contextKey string

const principalContextKey contextKey = "principal"

// WithPrincipal injects the principal into the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the request's principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(Principal)
	return p, ok
}
