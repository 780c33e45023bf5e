package api

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// memUsers and memExpenses stand in for the Mongo repositories.

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]domain.User
	byKey map[string]string
	seq   int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]domain.User{}, byKey: map[string]string{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.EmailKey(u.Email)
	if _, ok := m.byKey[key]; ok {
		return nil, domain.ErrEmailTaken
	}
	m.seq++
	c := *u
	c.ID = "u" + strconv.Itoa(m.seq)
	m.byID[c.ID] = c
	m.byKey[key] = c.ID
	return &c, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[domain.EmailKey(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := m.byID[id]
	return &c, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.byID[id] = u
	return nil
}

type memExpenses struct {
	mu   sync.Mutex
	byID map[string]domain.Expense
	seq  int
}

func newMemExpenses() *memExpenses {
	return &memExpenses{byID: map[string]domain.Expense{}}
}

func (m *memExpenses) Create(_ context.Context, e *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e.ID = "e" + strconv.Itoa(m.seq)
	m.byID[e.ID] = *e
	return nil
}

func (m *memExpenses) FindByID(_ context.Context, id string) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	return &e, nil
}

func (m *memExpenses) ListByOwner(_ context.Context, userID string) ([]*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Expense
	for _, e := range m.byID {
		if e.UserID == userID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memExpenses) UpdateOwned(_ context.Context, e *domain.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[e.ID]
	if !ok || cur.UserID != e.UserID {
		return domain.ErrExpenseNotFound
	}
	m.byID[e.ID] = *e
	return nil
}

func (m *memExpenses) DeleteOwned(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok || cur.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memExpenses) SumByCategory(_ context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := map[string]domain.CategoryTotal{}
	for _, e := range m.byID {
		if e.UserID != userID || e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		t := acc[e.Category]
		t.Category = e.Category
		t.TotalAmount += e.Amount
		t.Count++
		acc[e.Category] = t
	}
	out := make([]domain.CategoryTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount > out[j].TotalAmount })
	return out, nil
}
