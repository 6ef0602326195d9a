package identity_test

import (
	"context"
	"testing"

	"github.com/courtsec/courtsec/internal/identity"
)

type stubProvider struct {
	id   string
	auth bool
}

func (s stubProvider) CurrentIdentity() string { return s.id }
func (s stubProvider) IsAuthenticated() bool   { return s.auth }

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		p        identity.Provider
		fallback string
		want     string
	}{
		{"authenticated user", identity.User("judge.k"), "", "judge.k"},
		{"anonymous", identity.Anonymous, "", identity.DefaultSystem},
		{"nil provider", nil, "", identity.DefaultSystem},
		{"custom fallback", identity.Anonymous, "seeder", "seeder"},
		{"unauthenticated with id", stubProvider{id: "mallory"}, "", identity.DefaultSystem},
		{"authenticated but empty", stubProvider{auth: true}, "", identity.DefaultSystem},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := identity.Resolve(tc.p, tc.fallback); got != tc.want {
				t.Errorf("Resolve = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	if got := identity.FromContext(ctx); got.IsAuthenticated() {
		t.Errorf("empty context principal = %+v", got)
	}

	ctx = identity.WithPrincipal(ctx, identity.User("clerk"))
	if got := identity.FromContext(ctx); got.CurrentIdentity() != "clerk" || !got.IsAuthenticated() {
		t.Errorf("principal = %+v", got)
	}
}
