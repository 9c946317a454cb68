package port

import (
	"context"

	"planfill/internal/domain"
)

// GenerateInput carries one batch of binding keys plus the user context.
type GenerateInput struct {
	Context domain.UserContext
	Keys    []string
}

// GenerateOutput contains the decoded content for one batch.
type GenerateOutput struct {
	Content    map[string]string
	ModelUsed  string
	PromptUsed string
}

// TextGenerator abstracts LLM-based content generation.
type TextGenerator interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
