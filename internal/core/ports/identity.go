package ports

import "context"

// Identity is the claim set extracted from a validated provider token.
type Identity struct {
	Subject string // stable provider-scoped subject, never empty on success
	Email   string
	Name    string
}

// IdentityVerifier validates a third-party ID token. Verify checks
// signature, issuer, audience, and expiry; any failing check yields
// domain.ErrInvalidToken. A network failure reaching the provider's key
// material yields domain.ErrIdentityProviderUnavailable. There is no
// partial success.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}
