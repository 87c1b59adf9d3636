package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record (or its scope) does not exist.
var ErrNotFound = errors.New("notification not found")

// NotificationRepo persists per-scope notification logs. Implementations
// must resolve the backing collection from the scope's role so that
// cross-scope reads are impossible through this interface.
type NotificationRepo interface {
	Insert(ctx context.Context, scope Scope, n *Notification) error
	Get(ctx context.Context, scope Scope, id uuid.UUID) (*Notification, error)
	// ListRecent returns up to limit records ordered by creation time
	// descending, ties broken by append sequence.
	ListRecent(ctx context.Context, scope Scope, limit int) ([]Notification, error)
	// MarkRead sets is_read/read_at on one record. Returns ErrNotFound if
	// the record does not exist in the scope.
	MarkRead(ctx context.Context, scope Scope, id uuid.UUID, at time.Time) error
	// MarkAllRead marks every currently-unread record in the scope and
	// returns how many were updated.
	MarkAllRead(ctx context.Context, scope Scope, at time.Time) (int64, error)
	CountUnread(ctx context.Context, scope Scope) (int64, error)
}
