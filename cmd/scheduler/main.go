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
	"golang.org/x/sync/errgroup"

	accountsrepo "github.com/paasforest/immigrationai-sub000/internal/accounts/repository"
	accountsservice "github.com/paasforest/immigrationai-sub000/internal/accounts/service"
	"github.com/paasforest/immigrationai-sub000/internal/adapters"
	"github.com/paasforest/immigrationai-sub000/internal/cases"
	"github.com/paasforest/immigrationai-sub000/internal/events"
	"github.com/paasforest/immigrationai-sub000/internal/notification"
	notificationrepo "github.com/paasforest/immigrationai-sub000/internal/notification/repository"
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
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	notificationModule := notification.NewModule(notificationrepo.New(pool), cfg, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task queue client", "error", err)
		panic("failed to initialize task queue client: " + err.Error())
	}
	defer func() { _ = taskClient.Close() }()

	val := validator.New()

	// Worker-side routing wiring (no HTTP handlers required).
	accountsService := accountsservice.New(accountsrepo.New(pool), log)
	accountResolver := adapters.NewAccountResolverAdapter(accountsService)
	casesModule := cases.NewModule(pool, accountResolver, eventBus, log)
	caseConverter := adapters.NewCaseConverterAdapter(casesModule.Service())
	routingModule := routing.NewModule(pool, caseConverter, taskClient, eventBus, val, cfg, log)

	worker, err := scheduler.NewWorker(routingModule.Service(), cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	sweeper := scheduler.NewSweeper(taskClient, cfg.GetExpirySweepInterval(), log)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return worker.Run()
	})
	group.Go(func() error {
		err := sweeper.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, stopping worker")
		worker.Shutdown()
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("scheduler stopped with error", "error", err)
		panic("scheduler stopped with error: " + err.Error())
	}
	log.Info("scheduler stopped")
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
