package notification

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockNotificationRepo is an in-memory test double for NotificationRepo.
// Records are kept per scope key, mirroring the per-role collection split.
type MockNotificationRepo struct {
	mu      sync.Mutex
	records map[string][]Notification

	InsertFunc      func(ctx context.Context, scope Scope, n *Notification) error
	ListRecentFunc  func(ctx context.Context, scope Scope, limit int) ([]Notification, error)
	MarkReadFunc    func(ctx context.Context, scope Scope, id uuid.UUID, at time.Time) error
	MarkAllReadFunc func(ctx context.Context, scope Scope, at time.Time) (int64, error)
}

func NewMockNotificationRepo() *MockNotificationRepo {
	return &MockNotificationRepo{
		records: make(map[string][]Notification),
	}
}

func (m *MockNotificationRepo) Insert(ctx context.Context, scope Scope, n *Notification) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, scope, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[scope.Key()] = append(m.records[scope.Key()], *n)
	return nil
}

func (m *MockNotificationRepo) Get(ctx context.Context, scope Scope, id uuid.UUID) (*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.records[scope.Key()] {
		if n.ID == id {
			out := n
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockNotificationRepo) ListRecent(ctx context.Context, scope Scope, limit int) ([]Notification, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, scope, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, len(m.records[scope.Key()]))
	copy(out, m.records[scope.Key()])
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, scope Scope, id uuid.UUID, at time.Time) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, scope, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.records[scope.Key()]
	for i := range list {
		if list[i].ID == id {
			readAt := at
			list[i].IsRead = true
			list[i].ReadAt = &readAt
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, scope Scope, at time.Time) (int64, error) {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, scope, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.records[scope.Key()]
	var count int64
	for i := range list {
		if !list[i].IsRead {
			readAt := at
			list[i].IsRead = true
			list[i].ReadAt = &readAt
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepo) CountUnread(ctx context.Context, scope Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.records[scope.Key()] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// Seed inserts a record as-is, bypassing server timestamp assignment.
// Used to simulate out-of-order arrival.
func (m *MockNotificationRepo) Seed(scope Scope, n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[scope.Key()] = append(m.records[scope.Key()], n)
}
