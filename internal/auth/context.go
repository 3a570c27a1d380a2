// internal/auth/context.go
//
// Request-context helper so downstream handlers (admin console, header)
// can read the verified username without re-parsing the token.
//
// Usage
// -----
//     // Attach the verified user after the gate authorises.
//     ctx = auth.WithUser(ctx, "admin")
//
//     // Downstream code retrieves it.
//     name, ok := auth.UserFromContext(ctx)

package auth

import "context"

// userKey is unexported to avoid context-key collisions.
type userKey struct{}

// WithUser returns a new context carrying the verified username.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userKey{}, username)
}

// UserFromContext extracts the verified username from ctx.  It returns
// ("", false) if no user is set.
func UserFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(userKey{}).(string)
	return name, ok
}
