package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/neverland-admin/internal/errs"
)

// Tokens signs and verifies operator access tokens (HS256).
type Tokens struct {
	key []byte
	now func() time.Time
}

// NewTokens returns a signer/verifier for key.
func NewTokens(key []byte) (*Tokens, error) {
	if len(key) == 0 {
		return nil, errors.New("empty signing key")
	}
	return &Tokens{key: key, now: time.Now}, nil
}

// Issue creates a signed token for operator valid for ttl.
func (t *Tokens) Issue(operator string, ttl time.Duration) (string, time.Time, error) {
	if operator == "" {
		return "", time.Time{}, errors.New("empty operator")
	}
	now := t.now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   operator,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	return signed, exp, err
}

// Verify parses raw and returns the operator it was issued to.
func (t *Tokens) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		return "", fmt.Errorf("%w: %v", errs.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token without subject", errs.ErrUnauthorized)
	}
	return claims.Subject, nil
}
