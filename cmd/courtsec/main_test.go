package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/courtsec/courtsec/internal/identity"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate"},
		{"seed"},
		{"import"},
		{"apikey", "create"},
		{"apikey", "revoke"},
		{"token", "issue"},
	} {
		cmd, rest, err := root.Find(path)
		if err != nil || len(rest) != 0 || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %q not found (got %v, rest %v, err %v)", strings.Join(path, " "), cmd.Name(), rest, err)
		}
	}
}

func TestCommandFlags(t *testing.T) {
	root := newRootCmd()

	tests := []struct {
		path []string
		flag string
	}{
		{[]string{"serve"}, "skip-migrations"},
		{[]string{"migrate"}, "status"},
		{[]string{"import"}, "sqlite"},
		{[]string{"import"}, "dry-run"},
		{[]string{"import"}, "batch-size"},
		{[]string{"import"}, "actor"},
		{[]string{"token", "issue"}, "ttl"},
		{[]string{"token", "issue"}, "email"},
	}

	for _, tt := range tests {
		cmd, _, err := root.Find(tt.path)
		if err != nil {
			t.Fatalf("find %v: %v", tt.path, err)
		}

		if cmd.Flags().Lookup(tt.flag) == nil {
			t.Errorf("%s: missing --%s", strings.Join(tt.path, " "), tt.flag)
		}
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
	}

	for _, tt := range tests {
		log := newLogger(tt.level)
		if log.GetLevel() != tt.want {
			t.Errorf("newLogger(%q) level = %v, want %v", tt.level, log.GetLevel(), tt.want)
		}

		if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
			t.Errorf("newLogger(%q) formatter = %T, want JSON", tt.level, log.Formatter)
		}
	}
}

func TestNewHTTPServer_KeepsFeedConnectionsOpen(t *testing.T) {
	srv := newHTTPServer("127.0.0.1:0", nil)

	if srv.ReadTimeout != 0 || srv.WriteTimeout != 0 {
		t.Errorf("read/write timeouts = %v/%v, want none", srv.ReadTimeout, srv.WriteTimeout)
	}

	if srv.ReadHeaderTimeout == 0 {
		t.Error("ReadHeaderTimeout not set")
	}
}

func TestTokenIssue(t *testing.T) {
	const secret = "0123456789abcdef0123456789abcdef"

	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://courtsec:pw@localhost:5432/courtsec")
	t.Setenv("JWT_SECRET", secret)

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "issue", "deputy.ruiz", "--email", "ruiz@court.example", "--ttl", "1h"})

	if err := root.Execute(); err != nil {
		t.Fatalf("token issue: %v", err)
	}

	p, err := identity.NewTokens(secret, "courtsec").Verify(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if p.CurrentIdentity() != "deputy.ruiz" || !p.IsAuthenticated() {
		t.Errorf("unexpected principal %+v", p)
	}
}

func TestTokenIssue_RequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://courtsec:pw@localhost:5432/courtsec")
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "issue", "deputy.ruiz"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected JWT_SECRET error, got %v", err)
	}
}
