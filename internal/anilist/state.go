package anilist

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// statePurpose tags state tokens so a bearer token can never pass as one.
const statePurpose = "anilist_oauth"

const stateTTL = 10 * time.Minute

// StateService issues and verifies the signed state carried through the OAuth
// redirect. Tokens are stateless: validity rests on the signature and the
// 10 minute expiry alone, nothing is kept server-side. Reuses the auth
// subsystem's signing secret on purpose.
type StateService struct {
	Secret []byte
}

type stateClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s StateService) Issue(username string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Purpose: statePurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// Verify returns the username bound into the state. Any failure collapses to
// ErrInvalidState; the caller has nothing useful to do with the distinction.
func (s StateService) Verify(state string) (string, error) {
	tok, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil {
		return "", ErrInvalidState
	}

	claims, ok := tok.Claims.(*stateClaims)
	if !ok || !tok.Valid {
		return "", ErrInvalidState
	}
	if claims.Purpose != statePurpose {
		return "", ErrInvalidState
	}
	if claims.Subject == "" {
		return "", ErrInvalidState
	}
	return claims.Subject, nil
}
