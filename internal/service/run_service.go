package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planfill/internal/config"
	"planfill/internal/document"
	"planfill/internal/domain"
	"planfill/internal/fill"
	"planfill/internal/grid"
	"planfill/internal/infer"
	"planfill/internal/port"
	"planfill/internal/writer"
)

// GenerateInput is the DTO for a synchronous template fill.
type GenerateInput struct {
	TemplateName string
	ContentType  string
	Template     []byte
	UserContext  domain.UserContext
}

// GenerateOutput carries the completed document and run bookkeeping.
type GenerateOutput struct {
	FileName    string
	ContentType string
	Document    []byte
	Run         *domain.Run
}

// SubmitRunInput is the DTO for queueing an asynchronous fill run.
type SubmitRunInput struct {
	TemplateName string
	ContentType  string
	Template     []byte
	UserContext  domain.UserContext
	NotifyEmail  string
}

// DownloadOutput carries a stored run result.
type DownloadOutput struct {
	FileName    string
	ContentType string
	Document    []byte
}

// RunService defines the template fill contract.
type RunService interface {
	// Generate runs the full pipeline in-request and returns the
	// completed document.
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
	// Inspect runs inference only.
	Inspect(ctx context.Context, contentType string, template []byte) (domain.Structure, error)
	// SubmitRun uploads the template and queues an asynchronous run,
	// returning the run and its download token.
	SubmitRun(ctx context.Context, input *SubmitRunInput) (*domain.Run, string, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	ListRuns(ctx context.Context, offset, limit int) ([]domain.Run, int, error)
	// DownloadRunOutput verifies the token and streams the stored result.
	DownloadRunOutput(ctx context.Context, id uuid.UUID, token string) (*DownloadOutput, error)
	// PresignRunOutput returns a time-limited direct link to the stored result.
	PresignRunOutput(ctx context.Context, id uuid.UUID) (string, error)
	// ProcessRun executes one claimed run; called by the queue worker.
	ProcessRun(ctx context.Context, run *domain.Run, maxAttempts int)
}

type runService struct {
	runRepo   port.RunRepository
	storage   port.ObjectStorage
	email     port.EmailSender
	generator port.TextGenerator
	engine    *infer.Engine
	tokens    *TokenIssuer
	fillOpts  fill.Options
	s3cfg     *config.S3Config
	logger    *zap.Logger
}

// NewRunService creates a new RunService implementation.
func NewRunService(
	runRepo port.RunRepository,
	storage port.ObjectStorage,
	email port.EmailSender,
	gen port.TextGenerator,
	engine *infer.Engine,
	tokens *TokenIssuer,
	fillOpts fill.Options,
	s3cfg *config.S3Config,
	logger *zap.Logger,
) RunService {
	return &runService{
		runRepo:   runRepo,
		storage:   storage,
		email:     email,
		generator: gen,
		engine:    engine,
		tokens:    tokens,
		fillOpts:  fillOpts,
		s3cfg:     s3cfg,
		logger:    logger,
	}
}

// pipelineResult aggregates one full inference→generation→write pass.
type pipelineResult struct {
	Output        []byte
	BindingCount  int
	FillCount     int
	TotalBatches  int
	FailedBatches int
}

// runPipeline executes the strict inference → generation → writing
// sequence against an in-memory template.
func (s *runService) runPipeline(ctx context.Context, contentType string, template []byte, userCtx domain.UserContext) (*pipelineResult, error) {
	doc, err := document.Open(template, contentType)
	if err != nil {
		return nil, err
	}

	structure := s.engine.Infer(grid.FromDocument(doc))
	if len(structure) == 0 {
		return nil, domain.ErrNoStructure
	}
	s.logger.Info("structure inferred", zap.Int("bindings", len(structure)))

	obs := newLogObserver(s.logger)
	orch := fill.New(s.generator, obs, s.logger, s.fillOpts)
	genResult, err := orch.Run(ctx, structure, userCtx)
	if err != nil {
		return nil, err
	}

	filled := writer.New(obs, s.logger).Apply(doc, structure, genResult.Content)

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("runService.runPipeline: saving document: %w", err)
	}

	return &pipelineResult{
		Output:        buf.Bytes(),
		BindingCount:  len(structure),
		FillCount:     filled,
		TotalBatches:  genResult.TotalBatches,
		FailedBatches: genResult.FailedBatches,
	}, nil
}

func (s *runService) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input.UserContext.Outline() == "" {
		return nil, domain.ErrMissingTopic
	}

	result, err := s.runPipeline(ctx, input.ContentType, input.Template, input.UserContext)
	if err != nil {
		return nil, err
	}

	run := s.newRun(input.TemplateName, input.ContentType, input.UserContext, "")
	now := time.Now().UTC()
	run.Status = domain.RunStatusCompleted
	run.Attempts = 1
	run.StartedAt = &now
	run.CompletedAt = &now
	run.BindingCount = result.BindingCount
	run.FillCount = result.FillCount
	run.TotalBatches = result.TotalBatches
	run.FailedBatches = result.FailedBatches

	if s.runRepo != nil {
		if err := s.runRepo.Create(ctx, run); err != nil {
			// Bookkeeping only; the user still gets their document.
			s.logger.Warn("recording completed run failed", zap.Error(err))
		}
	}

	return &GenerateOutput{
		FileName:    outputFileName(input.ContentType),
		ContentType: input.ContentType,
		Document:    result.Output,
		Run:         run,
	}, nil
}

func (s *runService) Inspect(ctx context.Context, contentType string, template []byte) (domain.Structure, error) {
	doc, err := document.Open(template, contentType)
	if err != nil {
		return nil, err
	}
	structure := s.engine.Infer(grid.FromDocument(doc))
	if len(structure) == 0 {
		return nil, domain.ErrNoStructure
	}
	return structure, nil
}

func (s *runService) SubmitRun(ctx context.Context, input *SubmitRunInput) (*domain.Run, string, error) {
	if input.UserContext.Outline() == "" {
		return nil, "", domain.ErrMissingTopic
	}

	run := s.newRun(input.TemplateName, input.ContentType, input.UserContext, input.NotifyEmail)
	run.TemplateBucket = s.s3cfg.Bucket
	run.TemplateKey = fmt.Sprintf("runs/%s/template", run.ID)

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      run.TemplateBucket,
		Key:         run.TemplateKey,
		Body:        bytes.NewReader(input.Template),
		ContentType: input.ContentType,
		Size:        int64(len(input.Template)),
	})
	if err != nil {
		s.logger.Error("template upload failed", zap.Error(err))
		return nil, "", domain.ErrUploadFailed
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, "", fmt.Errorf("runService.SubmitRun: %w", err)
	}

	token, err := s.tokens.IssueDownloadToken(run.ID)
	if err != nil {
		return nil, "", err
	}
	return run, token, nil
}

func (s *runService) GetRun(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return s.runRepo.GetByID(ctx, id)
}

func (s *runService) ListRuns(ctx context.Context, offset, limit int) ([]domain.Run, int, error) {
	return s.runRepo.List(ctx, offset, limit)
}

func (s *runService) DownloadRunOutput(ctx context.Context, id uuid.UUID, token string) (*DownloadOutput, error) {
	tokenRunID, err := s.tokens.VerifyDownloadToken(token)
	if err != nil {
		return nil, err
	}
	if tokenRunID != id {
		return nil, domain.ErrInvalidToken
	}

	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status != domain.RunStatusCompleted {
		return nil, domain.ErrRunNotReady
	}

	data, err := s.storage.Download(ctx, run.OutputBucket, run.OutputKey)
	if err != nil {
		return nil, fmt.Errorf("runService.DownloadRunOutput: %w", err)
	}
	return &DownloadOutput{
		FileName:    outputFileName(run.ContentType),
		ContentType: run.ContentType,
		Document:    data,
	}, nil
}

func (s *runService) PresignRunOutput(ctx context.Context, id uuid.UUID) (string, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if run.Status != domain.RunStatusCompleted {
		return "", domain.ErrRunNotReady
	}
	url, err := s.storage.GetPresignedURL(ctx, run.OutputBucket, run.OutputKey, s.s3cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("runService.PresignRunOutput: %w", err)
	}
	return url, nil
}

// ProcessRun executes a claimed run: template download, pipeline,
// output upload, status update, notification. The run must already be
// in processing status with Attempts incremented.
func (s *runService) ProcessRun(ctx context.Context, run *domain.Run, maxAttempts int) {
	var userCtx domain.UserContext
	if err := json.Unmarshal(run.UserContext, &userCtx); err != nil {
		s.failRun(ctx, run, maxAttempts, fmt.Errorf("decoding user context: %w", err))
		return
	}

	template, err := s.storage.Download(ctx, run.TemplateBucket, run.TemplateKey)
	if err != nil {
		s.failRun(ctx, run, maxAttempts, fmt.Errorf("downloading template: %w", err))
		return
	}

	result, err := s.runPipeline(ctx, run.ContentType, template, userCtx)
	if err != nil {
		s.failRun(ctx, run, maxAttempts, err)
		return
	}

	run.OutputBucket = s.s3cfg.Bucket
	run.OutputKey = fmt.Sprintf("runs/%s/%s", run.ID, outputFileName(run.ContentType))
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      run.OutputBucket,
		Key:         run.OutputKey,
		Body:        bytes.NewReader(result.Output),
		ContentType: run.ContentType,
		Size:        int64(len(result.Output)),
	})
	if err != nil {
		s.failRun(ctx, run, maxAttempts, fmt.Errorf("uploading output: %w", err))
		return
	}

	now := time.Now().UTC()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	run.ErrorText = ""
	run.BindingCount = result.BindingCount
	run.FillCount = result.FillCount
	run.TotalBatches = result.TotalBatches
	run.FailedBatches = result.FailedBatches

	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Error("saving completed run failed",
			zap.String("run_id", run.ID.String()), zap.Error(err))
		return
	}

	s.logger.Info("run completed",
		zap.String("run_id", run.ID.String()),
		zap.Int("bindings", run.BindingCount),
		zap.Int("filled", run.FillCount))

	s.notifyCompleted(ctx, run)
}

// failRun requeues a run while attempts remain, otherwise marks it
// permanently failed and notifies the requester.
func (s *runService) failRun(ctx context.Context, run *domain.Run, maxAttempts int, runErr error) {
	run.ErrorText = runErr.Error()

	if run.Attempts < maxAttempts && retryable(runErr) {
		run.Status = domain.RunStatusQueued
		s.logger.Warn("run requeued",
			zap.String("run_id", run.ID.String()),
			zap.Int("attempt", run.Attempts),
			zap.Error(runErr))
	} else {
		run.Status = domain.RunStatusFailed
		s.logger.Error("run failed permanently",
			zap.String("run_id", run.ID.String()),
			zap.Error(runErr))
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Error("saving failed run state",
			zap.String("run_id", run.ID.String()), zap.Error(err))
		return
	}

	if run.Status == domain.RunStatusFailed && run.NotifyEmail != "" && s.email != nil {
		if err := s.email.SendRunFailed(ctx, run.NotifyEmail, run.TemplateName, run.ErrorText); err != nil {
			s.logger.Warn("failure notification not sent", zap.Error(err))
		}
	}
}

func (s *runService) notifyCompleted(ctx context.Context, run *domain.Run) {
	if run.NotifyEmail == "" || s.email == nil {
		return
	}
	url, err := s.storage.GetPresignedURL(ctx, run.OutputBucket, run.OutputKey, s.s3cfg.PresignExpiry)
	if err != nil {
		s.logger.Warn("presigning download link failed", zap.Error(err))
		return
	}
	if err := s.email.SendRunCompleted(ctx, run.NotifyEmail, run.TemplateName, url); err != nil {
		s.logger.Warn("completion notification not sent", zap.Error(err))
	}
}

func (s *runService) newRun(templateName, contentType string, userCtx domain.UserContext, notifyEmail string) *domain.Run {
	ctxJSON, _ := json.Marshal(userCtx)
	return &domain.Run{
		ID:           uuid.New(),
		Status:       domain.RunStatusQueued,
		TemplateName: templateName,
		ContentType:  contentType,
		UserContext:  ctxJSON,
		NotifyEmail:  notifyEmail,
	}
}

// retryable reports whether a failure is worth another attempt.
// Template and structure defects stay broken no matter how often the
// run is retried.
func retryable(err error) bool {
	for _, sentinel := range []error{
		domain.ErrNoStructure,
		domain.ErrUnsupportedFileType,
		domain.ErrInvalidTemplate,
		domain.ErrMissingTopic,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}

// outputFileName names the downloadable result by template type.
func outputFileName(contentType string) string {
	if domain.AllowedContentTypes[contentType] == domain.TemplateTypeXLSX {
		return "generated_lesson_plan.xlsx"
	}
	return "generated_lesson_plan.docx"
}

// logObserver adapts zap to port.ProgressObserver.
type logObserver struct {
	logger *zap.Logger
}

func newLogObserver(logger *zap.Logger) port.ProgressObserver {
	return &logObserver{logger: logger}
}

func (o *logObserver) Event(event, detail string) {
	o.logger.Info("progress", zap.String("event", event), zap.String("detail", detail))
}
