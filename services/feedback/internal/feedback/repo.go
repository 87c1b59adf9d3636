package feedback

import (
	"context"

	"github.com/google/uuid"
)

// FeedbackRepo persists feedback records and the stall/centre records
// the resolution workflow authorizes against.
//
// Create and Delete maintain the stall rating aggregate in the same
// transaction as the feedback write. SetResolution only matches an
// unresolved record; a record resolved in the meantime surfaces as
// ErrAlreadyResolved.
type FeedbackRepo interface {
	Create(ctx context.Context, f *Feedback) error
	Get(ctx context.Context, id uuid.UUID) (*Feedback, error)
	ListByStall(ctx context.Context, stallID uuid.UUID) ([]*Feedback, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetResolution(ctx context.Context, id uuid.UUID, stallResponse string, res *Resolution) error

	GetStall(ctx context.Context, id uuid.UUID) (*Stall, error)
	GetCentre(ctx context.Context, id uuid.UUID) (*Centre, error)
}
