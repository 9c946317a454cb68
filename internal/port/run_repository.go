package port

import (
	"context"

	"github.com/google/uuid"

	"planfill/internal/domain"
)

// RunRepository defines the contract for fill run persistence.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	List(ctx context.Context, offset, limit int) ([]domain.Run, int, error)
	Update(ctx context.Context, run *domain.Run) error
	// ClaimQueued atomically moves up to limit queued runs to processing,
	// incrementing their attempt counter, and returns the claimed rows.
	ClaimQueued(ctx context.Context, limit int) ([]domain.Run, error)
}
