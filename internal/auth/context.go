package auth

import "context"

type identityKey struct{}

// WithIdentity attaches the authenticated identity for the remainder of
// the request. It is re-derived from the cookie on every request and never
// outlives one.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the auth middleware.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}
