package handler

import (
	"time"

	"github.com/expensetrack/expense-api/internal/core/domain"
	"github.com/expensetrack/expense-api/internal/core/ports"
)

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Message string `json:"message"`
}

// --- Request / Response types ---

type expenseRequest struct {
	Amount      float64    `json:"amount"      validate:"required,gt=0"`
	Category    string     `json:"category"    validate:"required,max=64"`
	Date        *time.Time `json:"date"`
	Description string     `json:"description" validate:"max=280"`
}

type expenseResponse struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type deleteExpenseResponse struct {
	ID string `json:"id"`
}

type categoryTotalResponse struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"total_amount"`
	Count       int     `json:"count"`
}

// --- Mapping ---

func toExpenseInput(req expenseRequest) ports.ExpenseInput {
	in := ports.ExpenseInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	return in
}

func toExpenseResponse(e *domain.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date.UTC(),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}
}

func toSummaryResponse(totals []domain.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalResponse{
			Category:    t.Category,
			TotalAmount: t.TotalAmount,
			Count:       t.Count,
		})
	}
	return out
}
