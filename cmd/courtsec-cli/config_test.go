package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, key, fmt string }{flagURL, flagKey, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagKey = orig.key
		flagFmt = orig.fmt
	})
}

// isolate points HOME at an empty temp dir and clears the COURTSEC_ variables.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags(t)
	t.Setenv("COURTSEC_URL", "")
	t.Setenv("COURTSEC_API_KEY", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	flagURL = defaultURL
	flagKey = ""
	return home
}

func writeConfigFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".courtsec")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfigEnv(t *testing.T) {
	isolate(t)
	t.Setenv("COURTSEC_URL", "http://env-server:9090")
	t.Setenv("COURTSEC_API_KEY", "cs_from-env")

	resolveConfig()

	if flagURL != "http://env-server:9090" {
		t.Errorf("flagURL: got %q", flagURL)
	}
	if flagKey != "cs_from-env" {
		t.Errorf("flagKey: got %q", flagKey)
	}
}

func TestResolveConfigFlagTakesPrecedenceOverEnv(t *testing.T) {
	isolate(t)
	t.Setenv("COURTSEC_URL", "http://env-server:9090")

	flagURL = "http://explicit-flag:1234"
	resolveConfig()

	if flagURL != "http://explicit-flag:1234" {
		t.Errorf("explicit flag should win; got %q", flagURL)
	}
}

func TestResolveConfigProfiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantURL string
		wantKey string
	}{
		{
			name:    "flat format",
			content: "url: http://from-file:8080\napi_key: cs_file\n",
			wantURL: "http://from-file:8080",
			wantKey: "cs_file",
		},
		{
			name: "active profile",
			content: `
active_profile: annex
profiles:
  default:
    url: http://default:3030
    api_key: cs_default
  annex:
    url: http://annex:4040
    api_key: cs_annex
`,
			wantURL: "http://annex:4040",
			wantKey: "cs_annex",
		},
		{
			name: "default profile when none active",
			content: `
profiles:
  default:
    url: http://default-profile:5050
    api_key: cs_default
`,
			wantURL: "http://default-profile:5050",
			wantKey: "cs_default",
		},
		{
			name:    "invalid yaml is ignored",
			content: ":::not-yaml:::",
			wantURL: defaultURL,
			wantKey: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			home := isolate(t)
			writeConfigFile(t, home, tc.content)

			resolveConfig()

			if flagURL != tc.wantURL {
				t.Errorf("flagURL: got %q, want %q", flagURL, tc.wantURL)
			}
			if flagKey != tc.wantKey {
				t.Errorf("flagKey: got %q, want %q", flagKey, tc.wantKey)
			}
		})
	}
}

func TestResolveConfigEnvNotOverriddenByFile(t *testing.T) {
	home := isolate(t)
	t.Setenv("COURTSEC_API_KEY", "cs_env-wins")
	writeConfigFile(t, home, "url: http://file:9000\napi_key: cs_file\n")

	resolveConfig()

	if flagKey != "cs_env-wins" {
		t.Errorf("flagKey should be env value; got %q", flagKey)
	}
	if flagURL != "http://file:9000" {
		t.Errorf("flagURL should come from the file; got %q", flagURL)
	}
}

func TestWriteConfigKeepsOtherProfiles(t *testing.T) {
	home := isolate(t)
	writeConfigFile(t, home, "profiles:\n  default:\n    url: http://a:1\n    api_key: cs_a\n")

	if _, err := writeConfig("http://b:2", "cs_b", "annex"); err != nil {
		t.Fatalf("writeConfig: %v", err)
	}

	_, cfg, err := loadConfigFile()
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if cfg.ActiveProfile != "annex" {
		t.Errorf("active profile: got %q", cfg.ActiveProfile)
	}
	if len(cfg.Profiles) != 2 || cfg.Profiles["default"].APIKey != "cs_a" {
		t.Errorf("profiles: got %+v", cfg.Profiles)
	}
}
