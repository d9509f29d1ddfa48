package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lease_portal_backend/internal/adapters/storage"
	"lease_portal_backend/internal/email"
	"lease_portal_backend/internal/leases"
	"lease_portal_backend/internal/scheduler"
	"lease_portal_backend/platform/config"
	"lease_portal_backend/platform/db"
	"lease_portal_backend/platform/logger"
	"lease_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
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

	val := validator.New()
	leasesModule := leases.NewModule(pool, cfg, val, log)

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	bucket := cfg.GetMinioBucketLeaseSnapshots()
	if err := withRetry(ctx, log, "ensure snapshot bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure snapshot bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure snapshot bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "snapshotBucket", bucket)

	emailer := email.NewSender(cfg)
	if emailer == nil {
		log.Warn("SMTP not configured; snapshot notifications disabled")
	}

	worker, err := scheduler.NewWorker(cfg, leasesModule.Service(), storageSvc, emailer, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	manager, err := scheduler.NewPeriodicManager(cfg)
	if err != nil {
		log.Error("failed to initialize periodic task manager", "error", err)
		panic("failed to initialize periodic task manager: " + err.Error())
	}
	go func() {
		if err := manager.Run(); err != nil {
			log.Error("periodic task manager stopped", "error", err)
		}
	}()
	defer manager.Shutdown()

	if err := worker.Run(ctx); err != nil {
		log.Error("scheduler worker stopped", "error", err)
		panic("scheduler worker stopped: " + err.Error())
	}
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
