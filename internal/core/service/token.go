package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenAuthority issues and verifies stateless HS256 identity tokens. The
// secret and TTL are fixed at construction; issued tokens are never stored.
type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenAuthority returns a TokenAuthority signing with secret. A non-positive
// ttl falls back to 24h; a nil now uses time.Now.
func NewTokenAuthority(secret string, ttl time.Duration, now func() time.Time) *TokenAuthority {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TokenAuthority{secret: []byte(secret), ttl: ttl, now: now}
}

// TTL reports the lifetime given to issued tokens.
func (a *TokenAuthority) TTL() time.Duration { return a.ttl }

// Issue signs a token whose subject is userID.
func (a *TokenAuthority) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: %w: empty subject", domain.ErrValidation)
	}

	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
// It never touches storage; callers needing a live user must look it up.
func (a *TokenAuthority) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return "", classifyTokenError(err)
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenMalformed
	}
	return claims.Subject, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	default:
		// bad signature, unexpected alg, not-yet-valid, unverifiable
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
}
