// context.go carries the resolved tenant and tenancy flags through the
// request context so handlers and middleware reach them without re-resolving
// the host.
package tenant

import "context"

type tenantKey struct{}
type flagsKey struct{}

// WithTenant returns a context carrying t (may be nil for unknown hosts).
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, t)
}

// FromContext returns the tenant stored by the resolver middleware, or nil.
func FromContext(ctx context.Context) *Tenant {
	v, _ := ctx.Value(tenantKey{}).(*Tenant)
	return v
}

// WithFlags returns a context carrying the classification flags.  Unlike
// the tenant itself, flags are always present once the resolver has run,
// even when the host has no site row.
func WithFlags(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, flagsKey{}, c)
}

// FlagsFromContext returns the flags stored by the resolver middleware.
// ok is false when the middleware has not run.
func FlagsFromContext(ctx context.Context) (Context, bool) {
	v, ok := ctx.Value(flagsKey{}).(Context)
	return v, ok
}
