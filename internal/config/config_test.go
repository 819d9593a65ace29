package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rfweber/qsotrainer/internal/qso"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.Verbosity != string(qso.VerbosityMedium) {
		t.Fatalf("verbosity default = %q", cfg.Session.Verbosity)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
host = "0.0.0.0"
port = 9090

[logging]
level = "debug"

[audio]
wpm = 25

[session]
count = 10
verbosity = "chatty"
join_grace_ms = 2000
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging section not applied: %+v", cfg.Logging)
	}
	if cfg.Audio.WPM != 25 {
		t.Fatalf("audio section not applied: %+v", cfg.Audio)
	}

	defaults := cfg.SessionDefaults()
	if defaults.Count != 10 || defaults.Verbosity != qso.VerbosityChatty {
		t.Fatalf("session defaults not applied: %+v", defaults)
	}
	if defaults.JoinGrace != 2*time.Second {
		t.Fatalf("join grace = %v, want 2s", defaults.JoinGrace)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Storage.Path != "qsotrainer.db" {
		t.Fatalf("storage default lost: %+v", cfg.Storage)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "[server]\nport = -1\n"},
		{"bad wpm", "[audio]\nwpm = 500\n"},
		{"bad verbosity", "[session]\nverbosity = \"loud\"\n"},
		{"bad count", "[session]\ncount = 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
