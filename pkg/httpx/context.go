package httpx

import (
	"context"

	"github.com/uplist/uplist/pkg/tokenx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

func contextWithClaims(ctx context.Context, c *tokenx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	return context.WithValue(ctx, CtxKeyClaims, c)
}

// ClaimsFromContext returns the verified token claims attached by the
// authentication middleware, or nil when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *tokenx.Claims {
	if c, ok := ctx.Value(CtxKeyClaims).(*tokenx.Claims); ok {
		return c
	}
	return nil
}
