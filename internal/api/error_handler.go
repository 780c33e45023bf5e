package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/expensetrack/expense-api/internal/api/handler"
	"github.com/expensetrack/expense-api/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the envelope {"message": "<text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, handler.ErrorResponse{Message: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, validationDetail(err)
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		// The guard's reason stays server-side.
		log.Debug().Err(err).Str("path", c.Path()).Msg("request rejected by auth guard")
		return http.StatusUnauthorized, "not authorized"
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden, "user not authorized"
	case errors.Is(err, domain.ErrExpenseNotFound):
		return http.StatusNotFound, "expense not found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "too many login attempts"
	case errors.Is(err, echo.ErrNotFound):
		return http.StatusNotFound, "route not found"
	}

	// Echo's own errors (bind failures, 405, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// validationDetail strips the sentinel prefix so clients see only the
// field-level message.
func validationDetail(err error) string {
	_, detail, ok := strings.Cut(err.Error(), domain.ErrValidation.Error()+": ")
	if !ok || detail == "" {
		return domain.ErrValidation.Error()
	}
	return detail
}
