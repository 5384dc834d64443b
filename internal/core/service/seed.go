package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

// SeedAdmin provisions an initial administrative account on first startup.
// It runs only when BOTH credentials are configured and the store is empty;
// the default deployment ships without seed credentials and no admin is
// created. There is no embedded fallback credential.
func SeedAdmin(ctx context.Context, repo ports.AccountRepository, username, password string, log zerolog.Logger) error {
	if username == "" || password == "" {
		log.Debug().Msg("admin seed not configured, skipping")
		return nil
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug().Int64("accounts", n).Msg("store not empty, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, &domain.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrUsernameTaken) {
		// Another replica seeded first.
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("username", username).Msg("seeded administrative account")
	return nil
}
