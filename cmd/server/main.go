// Command server runs the expense tracker HTTP API.
//
// @title                       Expense Tracker API
// @version                     1.0
// @description                 User accounts, bearer-token authentication and per-user expenses.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/expensetrack/expense-api/internal/api"
	"github.com/expensetrack/expense-api/internal/api/handler"
	"github.com/expensetrack/expense-api/internal/core/service"
	"github.com/expensetrack/expense-api/internal/infrastructure/config"
	mongostore "github.com/expensetrack/expense-api/internal/infrastructure/db/mongo"
	redisstore "github.com/expensetrack/expense-api/internal/infrastructure/db/redis"
	"github.com/expensetrack/expense-api/internal/infrastructure/queue"
	"github.com/expensetrack/expense-api/pkg/logger"
)

const serviceName = "expense-api"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	users := mongostore.NewUserRepository(db)
	expenses := mongostore.NewExpenseRepository(db)
	if err := mongostore.EnsureIndexes(ctx, users, expenses); err != nil {
		return err
	}

	checks := map[string]handler.Check{"mongodb": mongostore.Ping(db)}

	deps := api.Deps{
		Logger:       log,
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		Checks:       checks,
	}

	if cfg.Redis.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		checks["redis"] = redisstore.Ping(rdb)
		deps.Limiter = redisstore.NewAttemptLimiter(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
	} else {
		log.Warn().Msg("redis disabled, login rate limiting is off")
	}

	// --- Password hashing ---
	pool := queue.NewHashPool(cfg.Auth.HashWorkers, cfg.Auth.BcryptCost, log)
	// Not tied to ctx: requests draining during shutdown still need it.
	pool.Start(context.Background())
	defer pool.Stop()

	// --- Services ---
	tokens := service.NewTokenAuthority(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, nil)
	auth := service.NewAuthService(users, pool, tokens, log)
	if err := auth.PrepareDummyHash(ctx); err != nil {
		return err
	}
	deps.Auth = auth
	deps.Guard = service.NewRequestGuard(tokens, users)
	deps.Expenses = service.NewExpenseService(expenses, log)

	e := api.NewRouter(deps)

	errCh := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort("", cfg.Port)
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
