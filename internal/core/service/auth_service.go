package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/facegate/auth-system/internal/core/domain"
	"github.com/facegate/auth-system/internal/core/ports"
)

// AuthService implements standard registration and password login.
type AuthService struct {
	repo     ports.AccountRepository
	engine   ports.TemplateEngine
	throttle ports.LoginThrottle
	tokens   *TokenIssuer
}

func NewAuthService(repo ports.AccountRepository, engine ports.TemplateEngine, throttle ports.LoginThrottle, tokens *TokenIssuer) *AuthService {
	return &AuthService{repo: repo, engine: engine, throttle: throttle, tokens: tokens}
}

// Register creates a standard account. The password is hashed with bcrypt
// (fresh salt per call, embedded in the hash); when a face image is supplied
// its template is extracted first so that a bad photo fails the registration
// before any row is written. The insert itself is atomic: a duplicate
// username yields domain.ErrUsernameTaken and no partial account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidRegistration
	}
	if in.Password != in.Confirm {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var template domain.Template
	if len(in.FaceImage) > 0 {
		template, err = s.engine.Extract(ctx, in.FaceImage)
		if err != nil {
			return nil, err
		}
	}

	account := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Template:     template,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	return s.repo.Create(ctx, account)
}

// AuthenticatePassword resolves username+password to an account and a
// session token. Unknown usernames and wrong passwords are distinct
// outcomes; an account without a password hash behaves like a wrong
// password, since the account exists but does not support this factor.
func (s *AuthService) AuthenticatePassword(ctx context.Context, username, password string) (string, *domain.Account, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrWrongPassword
	}
	if s.throttle != nil && !s.throttle.Allowed(ctx, username) {
		return "", nil, domain.ErrTooManyAttempts
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	if !account.HasPassword() || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		if s.throttle != nil {
			s.throttle.RecordFailure(ctx, username)
		}
		return "", nil, domain.ErrWrongPassword
	}

	if s.throttle != nil {
		s.throttle.Reset(ctx, username)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}
