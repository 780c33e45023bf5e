// Package requestctx carries the authenticated identity through a request's
// context.Context.
package requestctx

import (
	"context"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

type identityKey struct{}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	if ctx == nil {
		return domain.Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok && id.ID != ""
}
