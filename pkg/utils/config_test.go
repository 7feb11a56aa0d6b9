package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Addr != ":8080" {
		t.Fatalf("addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.Auth.JWTIssuer != "animetrack" {
		t.Fatalf("issuer: got %q", cfg.Auth.JWTIssuer)
	}
	if cfg.Auth.JWTDuration != 24*time.Hour {
		t.Fatalf("duration: got %v", cfg.Auth.JWTDuration)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("ANIMETRACK_JWT_SECRET", "env-secret")
	t.Setenv("ANIMETRACK_JWT_TTL_HOURS", "2")

	cfg := LoadConfig()
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("secret: got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.JWTDuration != 2*time.Hour {
		t.Fatalf("duration: got %v", cfg.Auth.JWTDuration)
	}
}

func TestLoadConfigTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
addr = ":9090"

[auth]
jwt_secret = "file-secret"
jwt_ttl_hours = 4

[anilist]
client_id = "12345"
redirect_uri = "http://localhost:9090/api/anilist/callback"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANIMETRACK_CONFIG", path)

	cfg := LoadConfig()
	if cfg.Addr != ":9090" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Fatalf("secret: got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.JWTDuration != 4*time.Hour {
		t.Fatalf("duration: got %v", cfg.Auth.JWTDuration)
	}
	if cfg.AniList.ClientID != "12345" {
		t.Fatalf("client id: got %q", cfg.AniList.ClientID)
	}
}

func TestLoadConfigBadFileFallsBack(t *testing.T) {
	t.Setenv("ANIMETRACK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg := LoadConfig()
	if cfg.Addr != ":8080" {
		t.Fatalf("addr: got %q", cfg.Addr)
	}
}
