package scheduler

import (
	"context"
	"fmt"
	"time"

	"lease_portal_backend/internal/adapters/storage"
	"lease_portal_backend/internal/email"
	"lease_portal_backend/internal/leases/export"
	"lease_portal_backend/internal/leases/service"
	"lease_portal_backend/internal/leases/transport"
	"lease_portal_backend/platform/config"
	"lease_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// snapshotTimeout bounds a full-register export so a slow store cannot hold
// the worker indefinitely.
const snapshotTimeout = 10 * time.Minute

// Worker executes scheduled lease register snapshots: run the unfiltered
// export, upload the workbook to object storage, notify by email when
// configured.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	svc     *service.Service
	store   *storage.MinIOService
	bucket  string
	emailer *email.Sender
	log     *logger.Logger
}

type WorkerConfig interface {
	config.SchedulerConfig
	config.MinIOConfig
}

func NewWorker(cfg WorkerConfig, svc *service.Service, store *storage.MinIOService, emailer *email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		svc:     svc,
		store:   store,
		bucket:  cfg.GetMinioBucketLeaseSnapshots(),
		emailer: emailer,
		log:     log,
	}

	mux.HandleFunc(TaskLeaseSnapshot, w.handleLeaseSnapshot)

	return w, nil
}

func (w *Worker) handleLeaseSnapshot(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeaseSnapshotPayload(task)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	leases, err := w.svc.Export(ctx, transport.SearchLeasesQuery{})
	if err != nil {
		return err
	}

	workbook, err := export.WriteWorkbook(leases)
	if err != nil {
		return err
	}

	objectKey := fmt.Sprintf("snapshots/leases-%s.xlsx", time.Now().Format("2006-01-02"))
	if err := w.store.UploadObject(ctx, w.bucket, objectKey, workbook.Bytes(), storage.XLSXContentType); err != nil {
		return err
	}

	w.log.Info("lease snapshot uploaded",
		"object", objectKey,
		"rows", len(leases),
		"requestedBy", payload.RequestedBy,
	)

	if w.emailer != nil {
		downloadURL, err := w.store.PresignedDownloadURL(ctx, w.bucket, objectKey)
		if err != nil {
			return err
		}
		if err := w.emailer.SendSnapshotNotification(ctx, objectKey, downloadURL, len(leases)); err != nil {
			// The snapshot itself succeeded; notification failure is logged,
			// not retried through asynq.
			w.log.Error("snapshot notification failed", "error", err)
		}
	}

	return nil
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}
