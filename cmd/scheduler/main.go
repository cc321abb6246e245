package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leaddesk_backend/internal/email"
	"leaddesk_backend/internal/leads"
	leadrepo "leaddesk_backend/internal/leads/repository"
	leadservice "leaddesk_backend/internal/leads/service"
	"leaddesk_backend/internal/reports"
	"leaddesk_backend/internal/scheduler"
	"leaddesk_backend/internal/sms"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/db"
	"leaddesk_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "timezone", cfg.GetTimezone().String())

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

	// Worker-side wiring (no HTTP handlers required).
	leadsRepo := leadrepo.New(pool)
	leadsSvc := leadservice.New(leadsRepo, nil, nil, cfg, log.WithComponent("leads"))
	smsSvc := sms.NewServiceFromConfig(pool, cfg, leads.NewDirectory(leadsRepo), log)

	jobs := &scheduler.Jobs{
		Locks:  leadsSvc,
		Digest: reports.NewServiceFromPool(pool, email.NewSender(cfg), cfg.GetTimezone(), log),
		Log:    log.WithComponent("jobs"),
	}
	if smsSvc.Enabled() {
		jobs.Reminders = scheduler.NewReminders(leadsRepo, smsSvc, cfg.GetTimezone(), log.WithComponent("reminders"))
	} else {
		log.Warn("SMS gateway not configured; appointment reminders disabled")
	}

	worker, err := scheduler.NewWorker(cfg, jobs, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		periodic.Run(gctx)
		return nil
	})
	_ = g.Wait()
	log.Info("scheduler stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
