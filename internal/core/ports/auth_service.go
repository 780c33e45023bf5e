package ports

import (
	"context"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// AuthResult is returned by the public register and login operations.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// PasswordHasher computes and checks password hashes. Implementations may
// block until a worker is free, bounded by ctx.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, hash, plain string) (bool, error)
}
