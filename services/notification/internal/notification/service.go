package notification

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// BatchLimit caps how many records a live subscription batch carries.
const BatchLimit = 50

// Service implements the notification store operations. Appends are the
// only writes to the payload fields; read-state mutations are the only
// updates. The hub, when present, is poked after every store change so
// live subscribers converge on the new state.
type Service struct {
	repo   NotificationRepo
	hub    *Hub
	logger aqm.Logger
	seq    atomic.Uint64
}

func NewService(repo NotificationRepo, hub *Hub, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Service{
		repo:   repo,
		hub:    hub,
		logger: logger,
	}
}

// Append assigns the server timestamp and appends one record to the
// scope's log. The caller-supplied CreatedAt, if any, is ignored.
func (s *Service) Append(ctx context.Context, scope Scope, n *Notification) (uuid.UUID, error) {
	n.EnsureID()
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = time.Now()
	n.Seq = s.seq.Add(1)

	if err := s.repo.Insert(ctx, scope, n); err != nil {
		return uuid.Nil, fmt.Errorf("append notification: %w", err)
	}

	s.changed(scope)
	return n.ID, nil
}

// MarkRead sets the read state on one record. Marking an already-read
// record is a no-op, not an error.
func (s *Service) MarkRead(ctx context.Context, scope Scope, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}

	if err := s.repo.MarkRead(ctx, scope, id, time.Now()); err != nil {
		return err
	}

	s.changed(scope)
	return nil
}

// MarkAllRead marks every currently-unread record in the scope. Records
// appended while the update runs may or may not be included.
func (s *Service) MarkAllRead(ctx context.Context, scope Scope) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, scope, time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}

	if count > 0 {
		s.changed(scope)
	}
	return count, nil
}

func (s *Service) UnreadCount(ctx context.Context, scope Scope) (int64, error) {
	return s.repo.CountUnread(ctx, scope)
}

// List returns the most recent records for the scope, newest first.
func (s *Service) List(ctx context.Context, scope Scope) ([]Notification, error) {
	return s.repo.ListRecent(ctx, scope, BatchLimit)
}

func (s *Service) changed(scope Scope) {
	if s.hub != nil {
		s.hub.Changed(scope)
	}
}
