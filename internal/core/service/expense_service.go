package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/expensetrack/expense-api/internal/core/domain"
	"github.com/expensetrack/expense-api/internal/core/ports"
	"github.com/expensetrack/expense-api/internal/pkg/metrics"
)

const (
	maxCategoryLen    = 64
	maxDescriptionLen = 280
)

type ExpenseService struct {
	repo   ports.ExpenseRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewExpenseService(repo ports.ExpenseRepository, logger zerolog.Logger) *ExpenseService {
	return &ExpenseService{repo: repo, logger: logger, now: time.Now}
}

// Create records a new expense owned by userID. A zero date means now.
func (s *ExpenseService) Create(ctx context.Context, userID string, in ports.ExpenseInput) (*domain.Expense, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	e := &domain.Expense{
		UserID:      userID,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        in.Date,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to create expense")
		return nil, err
	}

	metrics.ExpensesCreatedTotal.Inc()
	s.logger.Info().Str("expense_id", e.ID).Str("user_id", userID).Msg("expense created")
	return e, nil
}

// List returns the caller's expenses; the owner filter runs in the query.
func (s *ExpenseService) List(ctx context.Context, userID string) ([]*domain.Expense, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Update changes an expense the caller owns.
func (s *ExpenseService) Update(ctx context.Context, userID, expenseID string, in ports.ExpenseInput) (*domain.Expense, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	e, err := s.owned(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}

	e.Amount = in.Amount
	e.Category = in.Category
	e.Date = in.Date
	e.Description = in.Description
	e.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateOwned(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an expense the caller owns.
func (s *ExpenseService) Delete(ctx context.Context, userID, expenseID string) error {
	if _, err := s.owned(ctx, userID, expenseID); err != nil {
		return err
	}
	if err := s.repo.DeleteOwned(ctx, expenseID, userID); err != nil {
		return err
	}
	s.logger.Info().Str("expense_id", expenseID).Str("user_id", userID).Msg("expense deleted")
	return nil
}

// Summary totals the caller's expenses for the current UTC month by category,
// highest total first.
func (s *ExpenseService) Summary(ctx context.Context, userID string) ([]domain.CategoryTotal, error) {
	from, to := domain.MonthRange(s.now())
	totals, err := s.repo.SumByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return totals, nil
}

// owned loads an expense and enforces that userID owns it.
func (s *ExpenseService) owned(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	e, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.OwnedBy(userID) {
		s.logger.Warn().Str("expense_id", expenseID).Str("user_id", userID).Msg("ownership check failed")
		return nil, domain.ErrNotOwner
	}
	return e, nil
}

func (s *ExpenseService) normalize(in ports.ExpenseInput) (ports.ExpenseInput, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)

	switch {
	case math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0:
		return in, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	case in.Category == "":
		return in, fmt.Errorf("%w: category is required", domain.ErrValidation)
	case len(in.Category) > maxCategoryLen:
		return in, fmt.Errorf("%w: category must be at most %d characters", domain.ErrValidation, maxCategoryLen)
	case len(in.Description) > maxDescriptionLen:
		return in, fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescriptionLen)
	}

	if in.Date.IsZero() {
		in.Date = s.now()
	}
	in.Date = in.Date.UTC()
	return in, nil
}
