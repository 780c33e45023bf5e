package ports

import (
	"context"
	"time"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// ExpenseRepository defines persistence operations for expenses. Every read
// that returns more than one record is filtered by owner in the query itself.
type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) error
	FindByID(ctx context.Context, id string) (*domain.Expense, error)
	// ListByOwner returns the user's expenses, newest date first.
	ListByOwner(ctx context.Context, userID string) ([]*domain.Expense, error)
	// UpdateOwned replaces the mutable fields of an expense. The write is
	// filtered by both id and owner; domain.ErrExpenseNotFound is returned when
	// nothing matched.
	UpdateOwned(ctx context.Context, e *domain.Expense) error
	// DeleteOwned removes an expense when it belongs to userID.
	DeleteOwned(ctx context.Context, id, userID string) error
	// SumByCategory aggregates the user's expenses dated in [from, to).
	SumByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error)
}
