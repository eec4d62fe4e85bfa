// Package identity carries the authenticated username from the boundary to
// handlers that act on behalf of a user.
package identity

import "context"

// Accessor supplies the acting user's username for the current request.
// An empty string means no authenticated user.
type Accessor interface {
	CurrentUsername(ctx context.Context) string
}

type ctxKey struct{}

// WithUsername returns a context carrying username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// FromContext returns the username stored by WithUsername.
func FromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(ctxKey{}).(string)
	return username, ok && username != ""
}

// ContextAccessor reads the username placed on the context by the boundary.
type ContextAccessor struct{}

func (ContextAccessor) CurrentUsername(ctx context.Context) string {
	username, _ := FromContext(ctx)
	return username
}

// Static always reports the same user. Useful for tests and scripts.
type Static string

func (s Static) CurrentUsername(context.Context) string { return string(s) }
