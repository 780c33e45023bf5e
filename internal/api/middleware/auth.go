package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/expensetrack/expense-api/internal/api/requestctx"
	"github.com/expensetrack/expense-api/internal/core/ports"
)

// Auth runs the request guard and stores the resolved identity in the
// request context. Rejections are returned as errors for the central error
// handler to render.
func Auth(guard ports.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := guard.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			c.SetRequest(req.WithContext(requestctx.WithIdentity(req.Context(), *id)))
			return next(c)
		}
	}
}
