package auth

import (
	"context"

	"hotel_booking/internal/domain"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the authenticated caller, or nil for anonymous requests.
func FromContext(ctx context.Context) *domain.Identity {
	id, ok := ctx.Value(ctxKey{}).(domain.Identity)
	if !ok {
		return nil
	}
	return &id
}

// Allow returns ErrForbidden unless id is set and holds one of roles. With
// no roles any authenticated caller passes.
func Allow(id *domain.Identity, roles ...domain.Role) error {
	if id == nil {
		return domain.Forbidden("authentication required")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if id.Is(r) {
			return nil
		}
	}
	return domain.Forbidden("role " + string(id.Role) + " may not perform this action")
}
