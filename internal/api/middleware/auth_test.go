package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/expensetrack/expense-api/internal/api/requestctx"
	"github.com/expensetrack/expense-api/internal/core/domain"
)

type stubGuard struct {
	gotHeader string
	id        *domain.Identity
	err       error
}

func (g *stubGuard) Authenticate(_ context.Context, header string) (*domain.Identity, error) {
	g.gotHeader = header
	return g.id, g.err
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	guard := &stubGuard{id: &domain.Identity{ID: "u1", Name: "Alice", Email: "a@x.com"}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(guard)(func(c echo.Context) error {
		called = true
		id, ok := requestctx.IdentityFromContext(c.Request().Context())
		if !ok || id.ID != "u1" || id.Email != "a@x.com" {
			t.Fatalf("identity not attached: %+v", id)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if guard.gotHeader != "Bearer abc" {
		t.Fatalf("guard got header %q", guard.gotHeader)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejected(t *testing.T) {
	e := echo.New()
	guard := &stubGuard{err: domain.ErrUnauthenticated}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Auth(guard)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if guard.gotHeader != "" {
		t.Fatalf("expected empty header, got %q", guard.gotHeader)
	}
}
