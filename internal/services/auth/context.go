package auth

import (
	"context"

	"github.com/classpass/backend/internal/domain/enums"
)

type identityContextKey struct{}

// Identity is the authenticated caller attached to a request context after
// access token validation.
type Identity struct {
	UserID int64
	SID    string
	Role   enums.Role
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	return identity, ok
}
