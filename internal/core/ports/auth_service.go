package ports

import (
	"context"

	"github.com/facegate/auth-system/internal/core/domain"
)

// RegisterInput carries all fields of a standard registration. FaceImage is
// optional; when present it must contain exactly one face or the whole
// registration fails.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Confirm   string
	FaceImage []byte
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	// AuthenticatePassword returns a session token and the resolved account.
	// domain.ErrAccountNotFound and domain.ErrWrongPassword are distinct so
	// the caller can tell an unknown username from a bad password.
	AuthenticatePassword(ctx context.Context, username, password string) (string, *domain.Account, error)
}

type FaceService interface {
	// AuthenticateFace resolves the account whose enrolled template matches
	// the probe image, or domain.ErrNoMatch. Probe extraction failures
	// (invalid image, zero or multiple faces) surface as-is: they are
	// capture-quality problems, not denials.
	AuthenticateFace(ctx context.Context, image []byte) (string, *domain.Account, error)
}

type ExternalAuthService interface {
	// AuthenticateExternal validates a provider-issued ID token and resolves
	// it to the account linked to its subject, auto-provisioning one on
	// first sight.
	AuthenticateExternal(ctx context.Context, rawToken string) (string, *domain.Account, error)
}
