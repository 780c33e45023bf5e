package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/expensetrack/expense-api/docs"
	"github.com/expensetrack/expense-api/internal/api/handler"
	"github.com/expensetrack/expense-api/internal/api/middleware"
	"github.com/expensetrack/expense-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Logger   zerolog.Logger
	Auth     ports.AuthService
	Guard    ports.Authenticator
	Expenses ports.ExpenseService

	// Limiter throttles register and login per client IP. Nil disables it.
	Limiter middleware.Limiter

	// Checks are the readiness checks, keyed by dependency name.
	Checks map[string]handler.Check

	AllowOrigins []string

	// Registerer and Gatherer back the HTTP metrics and /metrics.
	// Nil means the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	origins := d.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	expenseHandler := handler.NewExpenseHandler(d.Expenses)
	healthHandler := handler.NewHealthHandler(d.Checks)
	requireAuth := middleware.Auth(d.Guard)

	var throttle []echo.MiddlewareFunc
	if d.Limiter != nil {
		throttle = append(throttle, middleware.RateLimit(d.Limiter, "auth", d.Logger))
	}

	// --- Public routes ---
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	users := e.Group("/api/users")
	users.POST("", authHandler.Register, throttle...)
	users.POST("/register", authHandler.Register, throttle...)
	users.POST("/login", authHandler.Login, throttle...)
	users.GET("/me", authHandler.Me, requireAuth)

	// --- Protected routes ---
	expenses := e.Group("/api/expenses", requireAuth)
	expenses.GET("", expenseHandler.List)
	expenses.POST("", expenseHandler.Create)
	expenses.GET("/summary", expenseHandler.Summary)
	expenses.PUT("/:id", expenseHandler.Update)
	expenses.DELETE("/:id", expenseHandler.Delete)

	return e
}
