package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg/enums/role"
)

func testScope() Scope {
	return NewScope(role.Roles.Customer, uuid.MustParse("550e8400-e29b-41d4-a716-446655440001"))
}

func TestServiceAppendAssignsServerFields(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	scope := testScope()

	n := &Notification{
		Type:      TypeOrderConfirmed,
		Title:     "Order confirmed",
		Message:   "Your order has been confirmed",
		IsRead:    true,                            // must be reset
		CreatedAt: time.Now().Add(-24 * time.Hour), // must be overwritten
	}

	id, err := svc.Append(context.Background(), scope, n)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("Append() returned nil id")
	}

	stored, err := repo.Get(context.Background(), scope, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.IsRead {
		t.Error("appended record should start unread")
	}
	if stored.ReadAt != nil {
		t.Error("appended record should have nil ReadAt")
	}
	if time.Since(stored.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt not server-assigned: %v", stored.CreatedAt)
	}
	if stored.Seq == 0 {
		t.Error("Seq not assigned")
	}
}

func TestServiceMarkRead(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	scope := testScope()
	ctx := context.Background()

	id, err := svc.Append(ctx, scope, &Notification{Type: TypeOrderReady, Message: "ready"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := svc.MarkRead(ctx, scope, id); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	stored, _ := repo.Get(ctx, scope, id)
	if !stored.IsRead || stored.ReadAt == nil {
		t.Error("record not marked read")
	}
	firstReadAt := *stored.ReadAt

	// Marking again is a no-op, not an error, and leaves ReadAt unchanged.
	if err := svc.MarkRead(ctx, scope, id); err != nil {
		t.Fatalf("second MarkRead() error = %v", err)
	}
	stored, _ = repo.Get(ctx, scope, id)
	if !stored.ReadAt.Equal(firstReadAt) {
		t.Error("second MarkRead() changed ReadAt")
	}
}

func TestServiceMarkReadNotFound(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)

	err := svc.MarkRead(context.Background(), testScope(), uuid.New())
	if err != ErrNotFound {
		t.Errorf("MarkRead() error = %v, want ErrNotFound", err)
	}
}

func TestServiceMarkAllRead(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	scope := testScope()
	ctx := context.Background()

	var firstID uuid.UUID
	for i := 0; i < 3; i++ {
		id, err := svc.Append(ctx, scope, &Notification{Type: TypeOrderPreparing, Message: "preparing"})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if i == 0 {
			firstID = id
		}
	}
	if err := svc.MarkRead(ctx, scope, firstID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}

	count, err := svc.MarkAllRead(ctx, scope)
	if err != nil {
		t.Fatalf("MarkAllRead() error = %v", err)
	}
	if count != 2 {
		t.Errorf("MarkAllRead() count = %d, want 2", count)
	}

	unread, err := svc.UnreadCount(ctx, scope)
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if unread != 0 {
		t.Errorf("UnreadCount() = %d, want 0", unread)
	}
}

func TestServiceScopeIsolation(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	customer := NewScope(role.Roles.Customer, uuid.MustParse("550e8400-e29b-41d4-a716-446655440010"))
	vendor := NewScope(role.Roles.Vendor, uuid.MustParse("550e8400-e29b-41d4-a716-446655440010"))

	id, err := svc.Append(ctx, customer, &Notification{Type: TypeOrderReady, Message: "ready"})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	// Same owner id under a different role is a different scope.
	if err := svc.MarkRead(ctx, vendor, id); err != ErrNotFound {
		t.Errorf("cross-role MarkRead() error = %v, want ErrNotFound", err)
	}
	batch, err := svc.List(ctx, vendor)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("cross-role List() = %d records, want 0", len(batch))
	}
}

func TestServiceListOrderedDescUnderScrambledArrival(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	scope := testScope()

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	// Arrival order deliberately scrambled relative to creation time.
	for _, offset := range []int{3, 0, 4, 1, 2} {
		repo.Seed(scope, Notification{
			ID:        uuid.New(),
			Type:      TypeOrderReady,
			Message:   "ready",
			CreatedAt: base.Add(time.Duration(offset) * time.Second),
			Seq:       uint64(offset + 1),
		})
	}

	batch, err := svc.List(context.Background(), scope)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(batch) != 5 {
		t.Fatalf("List() = %d records, want 5", len(batch))
	}
	for i := 1; i < len(batch); i++ {
		if batch[i].CreatedAt.After(batch[i-1].CreatedAt) {
			t.Errorf("batch not sorted descending at %d: %v after %v", i, batch[i].CreatedAt, batch[i-1].CreatedAt)
		}
	}
}

func TestServiceListTieBreaksBySeq(t *testing.T) {
	repo := NewMockNotificationRepo()
	svc := NewService(repo, nil, nil)
	scope := testScope()

	at := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	first := uuid.MustParse("550e8400-e29b-41d4-a716-446655440021")
	second := uuid.MustParse("550e8400-e29b-41d4-a716-446655440022")
	repo.Seed(scope, Notification{ID: second, CreatedAt: at, Seq: 2})
	repo.Seed(scope, Notification{ID: first, CreatedAt: at, Seq: 1})

	batch, err := svc.List(context.Background(), scope)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if batch[0].ID != second || batch[1].ID != first {
		t.Errorf("tie-break order = [%s %s], want [%s %s]", batch[0].ID, batch[1].ID, second, first)
	}
}
