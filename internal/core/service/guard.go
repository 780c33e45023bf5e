package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expensetrack/expense-api/internal/core/domain"
	"github.com/expensetrack/expense-api/internal/core/ports"
	"github.com/expensetrack/expense-api/internal/pkg/metrics"
)

// Rejection reasons recorded on the guard metric.
const (
	reasonMissingHeader = "missing_header"
	reasonBadScheme     = "bad_scheme"
	reasonMalformed     = "malformed"
	reasonInvalid       = "invalid"
	reasonExpired       = "expired"
	reasonUnknownUser   = "unknown_user"
)

// RequestGuard turns an Authorization header into a live identity. Every
// failure is reported as domain.ErrUnauthenticated wrapping the cause, so the
// boundary can answer with a single 401.
type RequestGuard struct {
	tokens ports.TokenVerifier
	users  ports.UserRepository
}

func NewRequestGuard(tokens ports.TokenVerifier, users ports.UserRepository) *RequestGuard {
	return &RequestGuard{tokens: tokens, users: users}
}

// Authenticate expects header to be "Bearer <token>".
func (g *RequestGuard) Authenticate(ctx context.Context, header string) (*domain.Identity, error) {
	if strings.TrimSpace(header) == "" {
		return nil, reject(reasonMissingHeader, errors.New("missing authorization header"))
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return nil, reject(reasonBadScheme, errors.New("invalid authorization header"))
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			return nil, reject(reasonExpired, err)
		case errors.Is(err, domain.ErrTokenMalformed):
			return nil, reject(reasonMalformed, err)
		default:
			return nil, reject(reasonInvalid, err)
		}
	}

	// A valid token is only a claim; the account must still exist.
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, reject(reasonUnknownUser, err)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	id := user.Identity()
	return &id, nil
}

func reject(reason string, cause error) error {
	metrics.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	return fmt.Errorf("%w: %w", domain.ErrUnauthenticated, cause)
}
