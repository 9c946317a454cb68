// Package main is the Planfill API server.
//
// @title Planfill API
// @version 1.0
// @description Template fill-in service: infers blank structure in lesson-plan templates and fills it with generated content.
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/email/noop"
	"planfill/internal/email/ses"
	"planfill/internal/fill"
	"planfill/internal/generator"
	_ "planfill/internal/generator/deepseek"
	_ "planfill/internal/generator/gemini"
	_ "planfill/internal/generator/openai"
	"planfill/internal/handler"
	"planfill/internal/infer"
	"planfill/internal/logging"
	"planfill/internal/port"
	"planfill/internal/repository/postgres"
	"planfill/internal/router"
	"planfill/internal/service"
	s3storage "planfill/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runRepo := postgres.NewRunRepo(db)

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	var email port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		email, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		email = noop.NewNoopSender(logger)
	}

	gen, err := generator.FromConfig(&cfg.Generator, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	engine := infer.FromConfig(&cfg.Infer)

	tokens := service.NewTokenIssuer(cfg.Auth)
	runSvc := service.NewRunService(
		runRepo, storage, email, gen, engine, tokens,
		fill.Options{BatchSize: cfg.Fill.BatchSize, MaxRetries: cfg.Fill.MaxRetries},
		&cfg.S3, logger,
	)

	fillH := handler.NewFillHandler(runSvc, &cfg.S3, logger)
	runH := handler.NewRunHandler(runSvc, &cfg.S3, logger)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, fillH, runH, healthH, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := service.NewQueueWorker(runRepo, runSvc, service.QueueWorkerConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	}, logger)

	workerDone := make(chan struct{})
	go func() {
		worker.Start(workerCtx)
		close(workerDone)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		stopWorker()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	stopWorker()
	<-workerDone
	logger.Info("shutdown complete")
	return nil
}
