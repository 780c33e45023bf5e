package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensetrack/expense-api/internal/core/domain"
	"github.com/expensetrack/expense-api/internal/core/ports"
)

var discardLogger = zerolog.Nop()

func newTestExpenseService(now time.Time) (*ExpenseService, *stubExpenseRepo) {
	repo := newStubExpenseRepo()
	svc := NewExpenseService(repo, discardLogger)
	svc.now = func() time.Time { return now }
	return svc, repo
}

var fixedNow = time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)

func TestExpenseService_Create(t *testing.T) {
	svc, repo := newTestExpenseService(fixedNow)

	e, err := svc.Create(context.Background(), "alice", ports.ExpenseInput{
		Amount:      12.5,
		Category:    " Food ",
		Description: "lunch",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "alice", e.UserID)
	assert.Equal(t, "Food", e.Category)
	assert.True(t, e.Date.Equal(fixedNow), "zero date defaults to now")
	assert.Contains(t, repo.byID, e.ID)
}

func TestExpenseService_Create_Validation(t *testing.T) {
	svc, repo := newTestExpenseService(fixedNow)

	for _, in := range []ports.ExpenseInput{
		{Amount: 0, Category: "Food"},
		{Amount: -3, Category: "Food"},
		{Amount: 3, Category: "  "},
		{Amount: 3, Category: string(make([]byte, 65))},
	} {
		_, err := svc.Create(context.Background(), "alice", in)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", in)
	}
	assert.Empty(t, repo.byID)
}

func TestExpenseService_List_FiltersByOwnerInQuery(t *testing.T) {
	svc, repo := newTestExpenseService(fixedNow)
	ctx := context.Background()

	_, _ = svc.Create(ctx, "alice", ports.ExpenseInput{Amount: 1, Category: "Food", Date: fixedNow.AddDate(0, 0, -2)})
	_, _ = svc.Create(ctx, "alice", ports.ExpenseInput{Amount: 2, Category: "Rent"})
	_, _ = svc.Create(ctx, "bob", ports.ExpenseInput{Amount: 3, Category: "Food"})

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", repo.lastListOwner)
	require.Len(t, list, 2)
	assert.Equal(t, "Rent", list[0].Category, "newest first")
}

func TestExpenseService_OwnershipCheck(t *testing.T) {
	svc, repo := newTestExpenseService(fixedNow)
	ctx := context.Background()

	bobs, err := svc.Create(ctx, "bob", ports.ExpenseInput{Amount: 40, Category: "Travel"})
	require.NoError(t, err)
	before := *repo.byID[bobs.ID]

	_, err = svc.Update(ctx, "alice", bobs.ID, ports.ExpenseInput{Amount: 1, Category: "Food"})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	err = svc.Delete(ctx, "alice", bobs.ID)
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	require.Contains(t, repo.byID, bobs.ID)
	assert.Equal(t, before, *repo.byID[bobs.ID], "resource must be unchanged")
}

func TestExpenseService_UpdateAndDelete_Owner(t *testing.T) {
	svc, repo := newTestExpenseService(fixedNow)
	ctx := context.Background()

	e, err := svc.Create(ctx, "alice", ports.ExpenseInput{Amount: 5, Category: "Food"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "alice", e.ID, ports.ExpenseInput{Amount: 7.25, Category: "Health", Description: "pharmacy"})
	require.NoError(t, err)
	assert.Equal(t, 7.25, updated.Amount)
	assert.Equal(t, "Health", repo.byID[e.ID].Category)

	require.NoError(t, svc.Delete(ctx, "alice", e.ID))
	assert.NotContains(t, repo.byID, e.ID)

	assert.ErrorIs(t, svc.Delete(ctx, "alice", e.ID), domain.ErrExpenseNotFound)
}

func TestExpenseService_Summary_CurrentMonth(t *testing.T) {
	svc, _ := newTestExpenseService(fixedNow)
	ctx := context.Background()

	add := func(user string, amount float64, cat string, date time.Time) {
		_, err := svc.Create(ctx, user, ports.ExpenseInput{Amount: amount, Category: cat, Date: date})
		require.NoError(t, err)
	}
	add("alice", 10, "Food", fixedNow)
	add("alice", 15, "Food", time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC))
	add("alice", 100, "Rent", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	add("alice", 999, "Rent", time.Date(2026, 4, 30, 23, 59, 0, 0, time.UTC))
	add("alice", 999, "Rent", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	add("bob", 500, "Food", fixedNow)

	got, err := svc.Summary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.CategoryTotal{
		{Category: "Rent", TotalAmount: 100, Count: 1},
		{Category: "Food", TotalAmount: 25, Count: 2},
	}, got)
}

func TestMonthRange(t *testing.T) {
	from, to := domain.MonthRange(time.Date(2026, 12, 15, 8, 0, 0, 0, time.FixedZone("x", 3600)))
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), to)
}
