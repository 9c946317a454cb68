package noop

import (
	"context"

	"go.uber.org/zap"

	"planfill/internal/port"
)

type noopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates an EmailSender that only logs, for deployments
// without SES access.
func NewNoopSender(logger *zap.Logger) port.EmailSender {
	return &noopSender{logger: logger}
}

func (s *noopSender) SendRunCompleted(_ context.Context, toEmail, templateName, downloadURL string) error {
	s.logger.Info("noop email: run completed",
		zap.String("to", toEmail),
		zap.String("template", templateName),
		zap.String("download_url", downloadURL))
	return nil
}

func (s *noopSender) SendRunFailed(_ context.Context, toEmail, templateName, errText string) error {
	s.logger.Info("noop email: run failed",
		zap.String("to", toEmail),
		zap.String("template", templateName),
		zap.String("error", errText))
	return nil
}
