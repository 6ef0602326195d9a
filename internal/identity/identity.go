// Package identity carries the acting identity attributed to a write.
package identity

import "context"

// DefaultSystem is the identity recorded when no authenticated caller exists.
const DefaultSystem = "system"

// Provider exposes the caller attributed to a transaction.
type Provider interface {
	CurrentIdentity() string
	IsAuthenticated() bool
}

// Principal is a resolved caller. The zero value is unauthenticated.
type Principal struct {
	ID            string
	Authenticated bool
}

// CurrentIdentity implements Provider.
func (p Principal) CurrentIdentity() string { return p.ID }

// IsAuthenticated implements Provider.
func (p Principal) IsAuthenticated() bool { return p.Authenticated && p.ID != "" }

// Anonymous is the unauthenticated principal.
var Anonymous = Principal{}

// User returns an authenticated principal for id.
func User(id string) Principal {
	return Principal{ID: id, Authenticated: true}
}

// Resolve returns the identity to record for p, substituting fallback when p
// is nil or unauthenticated. An empty fallback means DefaultSystem.
func Resolve(p Provider, fallback string) string {
	if fallback == "" {
		fallback = DefaultSystem
	}

	if p == nil || !p.IsAuthenticated() {
		return fallback
	}

	if id := p.CurrentIdentity(); id != "" {
		return id
	}

	return fallback
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p. Request handling uses this to
// hand the caller from middleware to handlers; the commit path takes the
// Provider as an explicit argument.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}

	return Anonymous
}
