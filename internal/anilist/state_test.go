package anilist

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()

	svc := StateService{Secret: []byte("super-secret")}

	state, err := svc.Issue("demo")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	got, err := svc.Verify(state)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != "demo" {
		t.Fatalf("username mismatch: got %q want %q", got, "demo")
	}
}

func TestStateWrongSecret(t *testing.T) {
	t.Parallel()

	state, err := StateService{Secret: []byte("right-secret")}.Issue("demo")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = StateService{Secret: []byte("wrong-secret")}.Verify(state)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func signState(t *testing.T, secret []byte, purpose, subject string, exp time.Time) string {
	t.Helper()

	claims := stateClaims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign test state: %v", err)
	}
	return signed
}

func TestStateExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	state := signState(t, secret, statePurpose, "demo", time.Now().Add(-time.Second))

	_, err := StateService{Secret: secret}.Verify(state)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for expired state, got %v", err)
	}
}

func TestStateWrongPurpose(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	state := signState(t, secret, "password_reset", "demo", time.Now().Add(time.Hour))

	_, err := StateService{Secret: secret}.Verify(state)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for wrong purpose, got %v", err)
	}
}

func TestStateMissingSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	state := signState(t, secret, statePurpose, "", time.Now().Add(time.Hour))

	_, err := StateService{Secret: secret}.Verify(state)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for missing subject, got %v", err)
	}
}

func TestStateGarbage(t *testing.T) {
	t.Parallel()

	_, err := StateService{Secret: []byte("secret")}.Verify("not.a.jwt")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
