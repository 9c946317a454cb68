package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"planfill/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendRunCompleted(ctx context.Context, toEmail, templateName, downloadURL string) error {
	subject := fmt.Sprintf("Your lesson plan %q is ready", templateName)
	htmlBody := buildCompletedHTML(templateName, downloadURL)
	textBody := fmt.Sprintf("Your lesson plan %q has been generated.\n\nDownload it here:\n%s\n\nThe link expires after a while; request a fresh one from the run page if needed.\n\nPlanfill", templateName, downloadURL)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendRunFailed(ctx context.Context, toEmail, templateName, errText string) error {
	subject := fmt.Sprintf("Generating %q failed", templateName)
	htmlBody := buildFailedHTML(templateName, errText)
	textBody := fmt.Sprintf("Generating your lesson plan %q failed.\n\nReason: %s\n\nPlease check the template and try again.\n\nPlanfill", templateName, errText)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildCompletedHTML(templateName, downloadURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your lesson plan is ready</h2>
  <p>The template <strong>%s</strong> has been filled in.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Download</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Planfill - Lesson Plan Generator</p>
</body>
</html>`, html.EscapeString(templateName), downloadURL, downloadURL)
}

func buildFailedHTML(templateName, errText string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Generation failed</h2>
  <p>Filling in the template <strong>%s</strong> did not succeed.</p>
  <p style="color: #b91c1c;">%s</p>
  <p>Please check the template and submit a new run.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Planfill - Lesson Plan Generator</p>
</body>
</html>`, html.EscapeString(templateName), html.EscapeString(errText))
}
