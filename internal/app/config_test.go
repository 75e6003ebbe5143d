package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dosetrack/dosetrack-backend/internal/data/repos/testutil"
)

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte("port: \"9090\"\njwt_secret_key: filesecret\naccess_token_ttl_seconds: 600\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "7070")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("APP_ENV", "")

	cfg := LoadConfig(testutil.Logger(t))

	// Environment beats the file.
	if cfg.Port != "7070" {
		t.Fatalf("Port = %q, want env value 7070", cfg.Port)
	}
	// The file beats built-in defaults.
	if cfg.JWTSecretKey != "filesecret" {
		t.Fatalf("JWTSecretKey = %q, want file value", cfg.JWTSecretKey)
	}
	if cfg.AccessTokenTTL != 10*time.Minute {
		t.Fatalf("AccessTokenTTL = %v, want 10m from file", cfg.AccessTokenTTL)
	}
	// Untouched keys keep their defaults.
	if cfg.Environment != "development" {
		t.Fatalf("Environment = %q, want default", cfg.Environment)
	}
}

func TestLoadConfigIgnoresBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(": not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "")

	cfg := LoadConfig(testutil.Logger(t))
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want default after broken file", cfg.Port)
	}
}
