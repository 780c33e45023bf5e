package ports

import (
	"context"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// UserRepository defines persistence for user identities.
//
// Create must reject a second user with the same domain.EmailKey by returning
// domain.ErrEmailTaken; implementations rely on a unique index for this.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}
