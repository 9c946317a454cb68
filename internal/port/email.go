package port

import "context"

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendRunCompleted(ctx context.Context, toEmail, templateName, downloadURL string) error
	SendRunFailed(ctx context.Context, toEmail, templateName, errText string) error
}
