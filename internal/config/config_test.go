package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civicpulse/request-notifier/internal/config"
	"github.com/civicpulse/request-notifier/internal/domain"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/civic")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GatewayKind != config.GatewayExpo {
		t.Fatalf("expected expo gateway, got %q", cfg.GatewayKind)
	}
	if cfg.GatewayTimeout != 10*time.Second {
		t.Fatalf("expected 10s gateway timeout, got %v", cfg.GatewayTimeout)
	}
	if cfg.WriteTimeout <= cfg.GatewayTimeout {
		t.Fatalf("expected write timeout %v above gateway timeout %v", cfg.WriteTimeout, cfg.GatewayTimeout)
	}
	if cfg.DedupClaimTimeout != 2*time.Minute {
		t.Fatalf("expected 2m claim timeout, got %v", cfg.DedupClaimTimeout)
	}
	if cfg.DedupBackend != config.DedupPostgres {
		t.Fatalf("expected postgres dedup, got %q", cfg.DedupBackend)
	}
	if !cfg.ListenerEnabled {
		t.Fatal("expected listener enabled by default")
	}
	if cfg.PushPriority != "high" || cfg.PushSound != "default" || cfg.PushChannelID != "default" {
		t.Fatalf("unexpected delivery hint defaults: %+v", cfg)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is empty")
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	// godotenv never overrides variables that exist, even empty ones, so
	// register restoration with t.Setenv and then unset.
	for _, key := range []string{"DATABASE_URL", "WORKERS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=postgres://from-file/db\nWORKERS=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "postgres://from-file/db" {
		t.Fatalf("expected DATABASE_URL from file, got %q", cfg.DatabaseURL)
	}
	if cfg.Workers != 3 {
		t.Fatalf("expected WORKERS=3 from file, got %d", cfg.Workers)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown gateway", map[string]string{"GATEWAY_KIND": "carrier-pigeon"}},
		{"fcm without credentials", map[string]string{"GATEWAY_KIND": "fcm"}},
		{"redis without url", map[string]string{"DEDUP_BACKEND": "redis"}},
		{"unknown dedup backend", map[string]string{"DEDUP_BACKEND": "memcached"}},
		{"zero workers", map[string]string{"WORKERS": "0"}},
		{"zero rate limit", map[string]string{"GATEWAY_RATE_LIMIT": "0"}},
		{"write timeout equals gateway timeout", map[string]string{"WRITE_TIMEOUT": "10s", "PUSH_GATEWAY_TIMEOUT": "10s"}},
		{"write timeout below gateway timeout", map[string]string{"WRITE_TIMEOUT": "5s"}},
		{"claim timeout below gateway timeout", map[string]string{"DEDUP_CLAIM_TIMEOUT": "5s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMessages(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		msgs, err := config.LoadMessages("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, s := range domain.TerminalStatuses() {
			if msgs[s].Title == "" || msgs[s].Body == "" {
				t.Fatalf("missing default text for %v", s)
			}
		}
	})

	t.Run("file overrides one status", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "messages.yaml")
		content := "statuses:\n  Completed:\n    title: Solicitud completada\n    body: Tu solicitud fue completada.\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		msgs, err := config.LoadMessages(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msgs[domain.StatusCompleted].Title != "Solicitud completada" {
			t.Fatalf("override not applied: %+v", msgs[domain.StatusCompleted])
		}
		if msgs[domain.StatusRejected].Title != "Request Rejected" {
			t.Fatalf("default for Rejected lost: %+v", msgs[domain.StatusRejected])
		}
	})

	t.Run("non-terminal status rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "messages.yaml")
		content := "statuses:\n  Draft:\n    title: x\n    body: y\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := config.LoadMessages(path); err == nil {
			t.Fatal("expected error for non-terminal status")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := config.LoadMessages(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
