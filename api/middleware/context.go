package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxOwnerID contextKey = "owner_id"
	ctxCompany contextKey = "company"
)

// OwnerIDFromContext returns the authenticated tenant, or uuid.Nil when the
// request was not authenticated.
func OwnerIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxOwnerID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func CompanyFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCompany).(string); ok {
		return v
	}
	return ""
}

// WithOwnerID injects the tenant identifier into the context.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOwnerID, ownerID)
}
