package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"planfill/internal/port"
)

// QueueWorkerConfig holds settings for the fill queue worker.
type QueueWorkerConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// QueueWorker polls for queued runs and dispatches them for processing.
// Each run is processed sequentially inside its own goroutine; the
// semaphore only bounds how many runs are in flight at once.
type QueueWorker struct {
	runRepo    port.RunRepository
	runService RunService
	cfg        QueueWorkerConfig
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// NewQueueWorker creates a new QueueWorker.
func NewQueueWorker(runRepo port.RunRepository, runService RunService, cfg QueueWorkerConfig, logger *zap.Logger) *QueueWorker {
	return &QueueWorker{
		runRepo:    runRepo,
		runService: runService,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until
// all in-flight runs have finished.
func (w *QueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.logger.Info("queue worker started",
		zap.Duration("poll", w.cfg.PollInterval),
		zap.Int("concurrency", w.cfg.Concurrency),
		zap.Int("max_retries", w.cfg.MaxRetries))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("queue worker shutting down, waiting for in-flight runs")
			w.wg.Wait()
			w.logger.Info("queue worker shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			runs, err := w.runRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					// Context canceled during poll — exit gracefully
					continue
				}
				w.logger.Error("claiming queued runs", zap.Error(err))
				continue
			}

			for i := range runs {
				run := runs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight runs complete even during shutdown.
					runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
					defer cancel()

					w.logger.Info("dispatching run",
						zap.String("run_id", run.ID.String()),
						zap.Int("attempt", run.Attempts))
					w.runService.ProcessRun(runCtx, &run, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
