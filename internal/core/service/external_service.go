package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

// ExternalAuthService logs a user in with a provider-issued ID token,
// auto-provisioning an account the first time a subject is seen. One
// provider subject maps to exactly one account for the lifetime of the
// system.
type ExternalAuthService struct {
	repo     ports.AccountRepository
	verifier ports.IdentityVerifier
	tokens   *TokenIssuer
	log      zerolog.Logger
}

func NewExternalAuthService(repo ports.AccountRepository, verifier ports.IdentityVerifier, tokens *TokenIssuer, log zerolog.Logger) *ExternalAuthService {
	return &ExternalAuthService{repo: repo, verifier: verifier, tokens: tokens, log: log}
}

// AuthenticateExternal validates the token and resolves its subject to an
// account. A token failing any validation check never creates nor returns
// an account.
func (s *ExternalAuthService) AuthenticateExternal(ctx context.Context, rawToken string) (string, *domain.Account, error) {
	identity, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", nil, err
	}

	account, err := s.repo.FindByExternalID(ctx, identity.Subject)
	if errors.Is(err, domain.ErrAccountNotFound) {
		account, err = s.provision(ctx, identity)
	}
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// provision creates the account for a first-seen subject. Username comes
// from the provider's name claim, falling back to the email local part.
// A username collision fails the provision outright; there is no suffix
// disambiguation, so the user must register under another factor first and
// link manually.
func (s *ExternalAuthService) provision(ctx context.Context, identity ports.Identity) (*domain.Account, error) {
	username := strings.TrimSpace(identity.Name)
	if username == "" {
		username, _, _ = strings.Cut(identity.Email, "@")
	}
	if username == "" {
		return nil, domain.ErrProvisioningConflict
	}

	account := &domain.Account{
		Username:   username,
		Email:      identity.Email,
		ExternalID: identity.Subject,
		Role:       domain.RoleUser,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, account)
	if errors.Is(err, domain.ErrUsernameTaken) {
		s.log.Warn().Str("username", username).Msg("auto-provision username collision")
		return nil, domain.ErrProvisioningConflict
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.ID).Msg("auto-provisioned external account")
	return created, nil
}
