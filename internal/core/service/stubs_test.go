package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/expensetrack/expense-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by id
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mirrors the unique index on the normalised email.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if domain.EmailKey(u.Email) == domain.EmailKey(user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if domain.EmailKey(u.Email) == domain.EmailKey(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type stubExpenseRepo struct {
	byID map[string]*domain.Expense
	seq  int
	// lastListOwner records the owner filter passed to ListByOwner.
	lastListOwner string
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{byID: make(map[string]*domain.Expense)}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *domain.Expense) error {
	r.seq++
	e.ID = fmt.Sprintf("exp-%d", r.seq)
	clone := *e
	r.byID[e.ID] = &clone
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id string) (*domain.Expense, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExpenseNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubExpenseRepo) ListByOwner(_ context.Context, userID string) ([]*domain.Expense, error) {
	r.lastListOwner = userID
	var out []*domain.Expense
	for _, e := range r.byID {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubExpenseRepo) UpdateOwned(_ context.Context, e *domain.Expense) error {
	cur, ok := r.byID[e.ID]
	if !ok || cur.UserID != e.UserID {
		return domain.ErrExpenseNotFound
	}
	clone := *e
	r.byID[e.ID] = &clone
	return nil
}

func (r *stubExpenseRepo) DeleteOwned(_ context.Context, id, userID string) error {
	cur, ok := r.byID[id]
	if !ok || cur.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubExpenseRepo) SumByCategory(_ context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	acc := map[string]*domain.CategoryTotal{}
	for _, e := range r.byID {
		if e.UserID != userID || e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		t, ok := acc[e.Category]
		if !ok {
			t = &domain.CategoryTotal{Category: e.Category}
			acc[e.Category] = t
		}
		t.TotalAmount += e.Amount
		t.Count++
	}
	out := make([]domain.CategoryTotal, 0, len(acc))
	for _, t := range acc {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount > out[j].TotalAmount })
	return out, nil
}

// ---------------------------------------------------------------------------
// Synchronous hasher
// ---------------------------------------------------------------------------

// plainHasher is a fast bcrypt-free PasswordHasher for service tests; the
// real pool is covered in the queue package.
type plainHasher struct {
	hashCalls    int
	compareCalls int
}

func (h *plainHasher) Hash(_ context.Context, plain string) (string, error) {
	h.hashCalls++
	return "hashed:" + plain, nil
}

func (h *plainHasher) Compare(_ context.Context, hash, plain string) (bool, error) {
	h.compareCalls++
	return hash == "hashed:"+plain, nil
}
