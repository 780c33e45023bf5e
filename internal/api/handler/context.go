package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/expensetrack/expense-api/internal/api/requestctx"
	"github.com/expensetrack/expense-api/internal/core/domain"
)

// currentIdentity returns the identity attached by the Auth middleware.
// Its absence means the route was mounted without the guard; fail closed.
func currentIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := requestctx.IdentityFromContext(c.Request().Context())
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
