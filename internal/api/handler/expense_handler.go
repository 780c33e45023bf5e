package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/expensetrack/expense-api/internal/core/ports"
)

// ExpenseHandler serves the caller's expenses. Every route sits behind the
// Auth middleware; the owner is always the authenticated identity.
type ExpenseHandler struct {
	service ports.ExpenseService
}

func NewExpenseHandler(service ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// List handles GET /api/expenses.
//
// @Summary      List my expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   expenseResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	expenses, err := h.service.List(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/expenses.
//
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      expenseRequest  true  "Expense"
// @Success      201   {object}  expenseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.service.Create(c.Request().Context(), id.ID, toExpenseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(e))
}

// Update handles PUT /api/expenses/:id.
//
// @Summary      Update one of my expenses
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Expense id"
// @Param        body  body      expenseRequest  true  "Expense"
// @Success      200   {object}  expenseResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.service.Update(c.Request().Context(), id.ID, c.Param("id"), toExpenseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toExpenseResponse(e))
}

// Delete handles DELETE /api/expenses/:id.
//
// @Summary      Delete one of my expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense id"
// @Success      200  {object}  deleteExpenseResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	expenseID := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), id.ID, expenseID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteExpenseResponse{ID: expenseID})
}

// Summary handles GET /api/expenses/summary.
//
// @Summary      Current month spending by category
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   categoryTotalResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/expenses/summary [get]
func (h *ExpenseHandler) Summary(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}

	totals, err := h.service.Summary(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummaryResponse(totals))
}
