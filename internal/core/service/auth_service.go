package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/expensetrack/expense-api/internal/core/domain"
	"github.com/expensetrack/expense-api/internal/core/ports"
	"github.com/expensetrack/expense-api/internal/pkg/metrics"
)

// bcrypt ignores everything past 72 bytes; reject instead of truncating.
const maxPasswordBytes = 72

// AuthService is the credential store: it creates users, verifies passwords
// and hands out tokens for the public register and login operations.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger
	now    func() time.Time

	dummyMu   sync.Mutex
	dummyHash string
}

func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

// Register validates input, hashes the password and persists a new user. The
// returned user never carries the hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validateRegistration(name, email, password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Uniqueness is enforced by the repository's unique index, not by a
	// lookup here.
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrEmailTaken
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return publicUser(created), nil
}

// VerifyCredentials returns the user owning email when password matches.
// Unknown email and wrong password both yield domain.ErrInvalidCredentials.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		// Burn a comparable amount of time so a miss looks like a bad password.
		s.compareDummy(ctx, password)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return publicUser(user), nil
}

// SignUp registers a user and issues their first token.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*ports.AuthResult, error) {
	user, err := s.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	return s.withToken(user)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			s.log.Debug().Msg("login rejected")
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return s.withToken(user)
}

// ChangePassword replaces the stored hash after checking the current password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" || len(next) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be 1-%d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Compare(ctx, user.PasswordHash, current)
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(ctx, next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePasswordHash(ctx, userID, hash)
}

func (s *AuthService) withToken(user *domain.User) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, User: user}, nil
}

// PrepareDummyHash computes the hash compared against on unknown-email
// logins, so the first miss costs the same as any other. Call it once at
// startup, after the hasher is ready.
func (s *AuthService) PrepareDummyHash(ctx context.Context) error {
	_, err := s.dummy(ctx)
	return err
}

func (s *AuthService) dummy(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash, nil
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("dummy hash: %w", err)
	}
	h, err := s.hasher.Hash(ctx, hex.EncodeToString(b))
	if err != nil {
		return "", fmt.Errorf("dummy hash: %w", err)
	}
	s.dummyHash = h
	return h, nil
}

func (s *AuthService) compareDummy(ctx context.Context, password string) {
	hash, err := s.dummy(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("dummy hash unavailable")
		return
	}
	_, _ = s.hasher.Compare(ctx, hash, password)
}

func validateRegistration(name, email, password string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	case email == "":
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	case !strings.Contains(email, "@"):
		return fmt.Errorf("%w: email must be a valid email", domain.ErrValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", domain.ErrValidation)
	case len(password) > maxPasswordBytes:
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	return nil
}

func publicUser(u *domain.User) *domain.User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
