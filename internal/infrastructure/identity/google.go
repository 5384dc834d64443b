// Package identity verifies third-party ID tokens against an OpenID
// Connect provider's published key material.
package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

const (
	defaultTimeout = 5 * time.Second
	keyCacheTTL    = time.Hour
	// refetchFloor stops an attacker with bogus kid values from turning
	// every login into a JWKS round trip.
	refetchFloor = time.Minute
)

// Config describes the trusted provider. All three fields are required;
// for Google they are the accounts.google.com issuer, the OAuth client ID
// as audience, and the oauth2/v3/certs JWKS endpoint.
type Config struct {
	Issuer   string
	Audience string
	JWKSURL  string
	Timeout  time.Duration
}

// Verifier validates RS256 ID tokens: signature against the provider's
// JWKS, then issuer, audience, and expiry. Any failed check is
// domain.ErrInvalidToken; only a failed key fetch is
// domain.ErrIdentityProviderUnavailable.
type Verifier struct {
	cfg    Config
	client *http.Client
	parser *jwt.Parser

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewVerifier(cfg Config) *Verifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Verifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify implements ports.IdentityVerifier.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (ports.Identity, error) {
	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.signingKey(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityProviderUnavailable) {
			return ports.Identity{}, domain.ErrIdentityProviderUnavailable
		}
		return ports.Identity{}, domain.ErrInvalidToken
	}
	if !token.Valid {
		return ports.Identity{}, domain.ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return ports.Identity{}, domain.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return ports.Identity{Subject: subject, Email: email, Name: name}, nil
}

// signingKey resolves a kid to a cached public key, refreshing the JWKS
// when the kid is unknown (key rotation) or the cache has aged out.
func (v *Verifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < keyCacheTTL
	recentFetch := time.Since(v.fetchedAt) < refetchFloor
	v.mu.RUnlock()

	if ok && fresh {
		return key, nil
	}
	if recentFetch && !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	if key, ok := v.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("unknown signing key %q", kid)
}

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

type jwksKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (v *Verifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityProviderUnavailable, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIdentityProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: jwks endpoint returned %d", domain.ErrIdentityProviderUnavailable, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("%w: decode jwks: %v", domain.ErrIdentityProviderUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := parseRSAKey(k)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()
	return nil
}

func parseRSAKey(k jwksKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	e := new(big.Int).SetBytes(eBytes)
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(e.Int64()),
	}, nil
}
