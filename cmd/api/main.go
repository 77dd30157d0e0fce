package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paasforest/immigrationai-sub000/internal/accounts/repository"
	accountsservice "github.com/paasforest/immigrationai-sub000/internal/accounts/service"
	"github.com/paasforest/immigrationai-sub000/internal/adapters"
	"github.com/paasforest/immigrationai-sub000/internal/cases"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	apphttp "github.com/paasforest/immigrationai-sub000/internal/http"
	"github.com/paasforest/immigrationai-sub000/internal/http/router"
	"github.com/paasforest/immigrationai-sub000/internal/leads"
	"github.com/paasforest/immigrationai-sub000/internal/notification"
	notificationrepo "github.com/paasforest/immigrationai-sub000/internal/notification/repository"
	"github.com/paasforest/immigrationai-sub000/internal/providers"
	"github.com/paasforest/immigrationai-sub000/internal/routing"
	"github.com/paasforest/immigrationai-sub000/internal/scheduler"
	"github.com/paasforest/immigrationai-sub000/platform/config"
	"github.com/paasforest/immigrationai-sub000/platform/db"
	"github.com/paasforest/immigrationai-sub000/platform/logger"
	"github.com/paasforest/immigrationai-sub000/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Task queue client for routing work
	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue client", "error", err)
		panic("failed to initialize task queue client: " + err.Error())
	}
	defer func() { _ = taskClient.Close() }()

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.NewModule(notificationrepo.New(pool), cfg, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	accountsService := accountsservice.New(repository.New(pool), log)
	accountResolver := adapters.NewAccountResolverAdapter(accountsService)

	casesModule := cases.NewModule(pool, accountResolver, eventBus, log)
	caseConverter := adapters.NewCaseConverterAdapter(casesModule.Service())

	routingModule := routing.NewModule(pool, caseConverter, taskClient, eventBus, val, cfg, log)
	leadsModule := leads.NewModule(pool, taskClient, eventBus, val, log)
	providersModule := providers.NewModule(pool, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			routingModule,
			casesModule,
			providersModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
