package ports

import (
	"context"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// Authenticator resolves a raw Authorization header into a live identity.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*domain.Identity, error)
}
