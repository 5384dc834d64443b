package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/facegate/auth-system/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenIssuer mints the HS256 session JWT handed back on every successful
// authentication, regardless of factor. The caller owns the session from
// then on; the core keeps no per-session state.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) Issue(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":      account.ID,
		"username": account.Username,
		"role":     account.Role,
		"exp":      time.Now().Add(t.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}
