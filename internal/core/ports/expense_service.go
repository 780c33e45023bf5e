package ports

import (
	"context"
	"time"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	Amount      float64
	Category    string
	Date        time.Time // zero means now
	Description string
}

// ExpenseService defines use-case operations on a user's expenses. userID is
// always the authenticated caller.
type ExpenseService interface {
	Create(ctx context.Context, userID string, in ExpenseInput) (*domain.Expense, error)
	List(ctx context.Context, userID string) ([]*domain.Expense, error)
	Update(ctx context.Context, userID, expenseID string, in ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, userID, expenseID string) error
	Summary(ctx context.Context, userID string) ([]domain.CategoryTotal, error)
}
