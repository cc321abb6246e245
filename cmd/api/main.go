package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leaddesk_backend/internal/adapters/storage"
	"leaddesk_backend/internal/ai"
	"leaddesk_backend/internal/analytics"
	"leaddesk_backend/internal/auth"
	"leaddesk_backend/internal/email"
	"leaddesk_backend/internal/events"
	"leaddesk_backend/internal/exports"
	apphttp "leaddesk_backend/internal/http"
	"leaddesk_backend/internal/http/router"
	"leaddesk_backend/internal/leads"
	leadsservice "leaddesk_backend/internal/leads/service"
	"leaddesk_backend/internal/messaging"
	"leaddesk_backend/internal/reports"
	"leaddesk_backend/internal/scheduler"
	"leaddesk_backend/internal/sms"
	"leaddesk_backend/migrations"
	"leaddesk_backend/platform/config"
	"leaddesk_backend/platform/db"
	"leaddesk_backend/platform/logger"
	"leaddesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

	if err := db.RunMigrations(ctx, pool, migrations.FS, migrations.Dir); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	rdb := initRedis(cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	queue, closeQueue := initJobQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	archive := initArchive(ctx, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule, err := auth.NewModule(pool, cfg, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}

	leadsModule, err := leads.NewModule(pool, archive, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	directory := leads.NewDirectory(leadsModule.Repository())

	analyticsModule, err := analytics.NewModule(pool, rdb, eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize analytics module", "error", err)
		panic("failed to initialize analytics module: " + err.Error())
	}

	aiModule, err := ai.NewModule(ctx, cfg, directory, val, log)
	if err != nil {
		log.Error("failed to initialize ai module", "error", err)
		panic("failed to initialize ai module: " + err.Error())
	}

	smsModule := sms.NewModule(sms.NewServiceFromConfig(pool, cfg, directory, log), val)
	messagingModule := messaging.NewModule(pool, eventBus, val, log)
	exportsModule := exports.NewModule(leads.NewExporter(leadsModule.Repository()), val, cfg.GetTimezone(), log)

	digest := reports.NewServiceFromPool(pool, email.NewSender(cfg), cfg.GetTimezone(), log)
	reportsModule := reports.NewModule(digest, queue, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		Profiles: authModule.ProfileLoader(),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			analyticsModule,
			messagingModule,
			aiModule,
			smsModule,
			exportsModule,
			reportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg config.SchedulerConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; analytics cache disabled")
		return nil
	}
	rdb, err := scheduler.OpenRedis(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		return nil
	}
	return rdb
}

func initJobQueue(cfg config.SchedulerConfig, log *logger.Logger) (reports.Enqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; ad-hoc report triggers disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initArchive returns nil when object storage is not configured so uploads
// are parsed without being archived.
func initArchive(ctx context.Context, cfg storage.Config, log *logger.Logger) leadsservice.UploadArchive {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; upload files will not be archived")
		return nil
	}
	archive, err := storage.NewMinIOArchive(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		panic("failed to initialize storage: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure uploads bucket", 5, 2*time.Second, func() error {
		return archive.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinIOBucketUploads())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "uploadsBucket", cfg.GetMinIOBucketUploads())
	return archive
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
