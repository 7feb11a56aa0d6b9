package auth

import (
	"testing"
	"time"

	"animetrack/pkg/models"
)

func TestSignAndParse(t *testing.T) {
	t.Parallel()

	ts := TokenService{Secret: []byte("super-secret"), Issuer: "animetrack-test", Duration: time.Hour}

	tok, exp, err := ts.Sign(&models.User{Username: "demo"})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", exp)
	}

	claims, err := ts.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.Username != "demo" {
		t.Fatalf("username mismatch: got %q want %q", claims.Username, "demo")
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	ts := TokenService{Secret: []byte("right-secret"), Issuer: "animetrack-test", Duration: time.Hour}
	tok, _, err := ts.Sign(&models.User{Username: "demo"})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	other := TokenService{Secret: []byte("wrong-secret"), Issuer: "animetrack-test", Duration: time.Hour}
	if _, err := other.Parse(tok); err == nil {
		t.Fatalf("expected error for wrong secret, got nil")
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	ts := TokenService{Secret: []byte("secret"), Issuer: "animetrack-test", Duration: -time.Minute}
	tok, _, err := ts.Sign(&models.User{Username: "demo"})
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if _, err := ts.Parse(tok); err == nil {
		t.Fatalf("expected error for expired token, got nil")
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	ts := TokenService{Secret: []byte("secret")}
	if _, err := ts.Parse("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
