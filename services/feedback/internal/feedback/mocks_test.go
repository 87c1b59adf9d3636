package feedback

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockFeedbackRepo is an in-memory FeedbackRepo with per-method
// overrides. Create and Delete move the stall aggregate the way the
// Mongo repo does.
type MockFeedbackRepo struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*Feedback
	stalls   map[uuid.UUID]*Stall
	centres  map[uuid.UUID]*Centre
	getCalls int

	GetFunc           func(ctx context.Context, id uuid.UUID) (*Feedback, error)
	SetResolutionFunc func(ctx context.Context, id uuid.UUID, stallResponse string, res *Resolution) error
}

func NewMockFeedbackRepo() *MockFeedbackRepo {
	return &MockFeedbackRepo{
		records: make(map[uuid.UUID]*Feedback),
		stalls:  make(map[uuid.UUID]*Stall),
		centres: make(map[uuid.UUID]*Centre),
	}
}

func (m *MockFeedbackRepo) SeedStall(s *Stall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalls[s.ID] = s
}

func (m *MockFeedbackRepo) SeedCentre(c *Centre) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.centres[c.ID] = c
}

func (m *MockFeedbackRepo) SeedFeedback(f *Feedback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[f.ID] = f
}

func (m *MockFeedbackRepo) GetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}

func (m *MockFeedbackRepo) Create(ctx context.Context, f *Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stall, ok := m.stalls[f.StallID]
	if !ok {
		return ErrNotFound
	}
	stall.AverageRating, stall.TotalReviews = AddRating(stall.AverageRating, stall.TotalReviews, f.Rating)
	m.records[f.ID] = f
	return nil
}

func (m *MockFeedbackRepo) Get(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	m.mu.Lock()
	m.getCalls++
	m.mu.Unlock()
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (m *MockFeedbackRepo) ListByStall(ctx context.Context, stallID uuid.UUID) ([]*Feedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Feedback
	for _, f := range m.records {
		if f.StallID == stallID {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *MockFeedbackRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	stall, ok := m.stalls[f.StallID]
	if !ok {
		return ErrNotFound
	}
	stall.AverageRating, stall.TotalReviews = RemoveRating(stall.AverageRating, stall.TotalReviews, f.Rating)
	delete(m.records, id)
	return nil
}

func (m *MockFeedbackRepo) SetResolution(ctx context.Context, id uuid.UUID, stallResponse string, res *Resolution) error {
	if m.SetResolutionFunc != nil {
		return m.SetResolutionFunc(ctx, id, stallResponse, res)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	if f.Resolution != nil {
		return ErrAlreadyResolved
	}
	f.StallResponse = stallResponse
	f.Resolution = res
	return nil
}

func (m *MockFeedbackRepo) GetStall(ctx context.Context, id uuid.UUID) (*Stall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stalls[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *MockFeedbackRepo) GetCentre(ctx context.Context, id uuid.UUID) (*Centre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.centres[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *c
	return &copied, nil
}

// MockOrderClient serves a fixed order view.
type MockOrderClient struct {
	mu      sync.Mutex
	Order   *OrderView
	refunds []uuid.UUID

	GetOrderFunc     func(ctx context.Context, id uuid.UUID) (*OrderView, error)
	RecordRefundFunc func(ctx context.Context, orderID uuid.UUID, refund *RefundResult) error
}

func (m *MockOrderClient) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	if m.Order == nil {
		return nil, ErrNotFound
	}
	copied := *m.Order
	return &copied, nil
}

func (m *MockOrderClient) RecordRefund(ctx context.Context, orderID uuid.UUID, refund *RefundResult) error {
	if m.RecordRefundFunc != nil {
		return m.RecordRefundFunc(ctx, orderID, refund)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds = append(m.refunds, orderID)
	return nil
}

func (m *MockOrderClient) RefundedOrders() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uuid.UUID, len(m.refunds))
	copy(out, m.refunds)
	return out
}

// MockGateway fabricates refunds or fails on demand.
type MockGateway struct {
	mu     sync.Mutex
	issued []int64

	RefundFunc func(ctx context.Context, paymentRef string, amountCents int64) (*RefundResult, error)
}

func (m *MockGateway) Refund(ctx context.Context, paymentRef string, amountCents int64) (*RefundResult, error) {
	if m.RefundFunc != nil {
		return m.RefundFunc(ctx, paymentRef, amountCents)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued = append(m.issued, amountCents)
	return &RefundResult{
		RefundID:    "re_mock",
		AmountCents: amountCents,
		Currency:    "sgd",
		Status:      "succeeded",
	}, nil
}

func (m *MockGateway) Issued() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.issued))
	copy(out, m.issued)
	return out
}

type publishedMsg struct {
	Topic string
	Data  []byte
}

// MockPublisher records publishes and optionally fails specific topics.
type MockPublisher struct {
	mu        sync.Mutex
	published []publishedMsg

	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{Topic: topic, Data: msg})
	return nil
}

func (m *MockPublisher) Published() []publishedMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMsg, len(m.published))
	copy(out, m.published)
	return out
}
