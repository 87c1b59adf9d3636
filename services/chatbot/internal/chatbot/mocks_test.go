package chatbot

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockLinkRepo is an in-memory LinkRepo.
type MockLinkRepo struct {
	mu     sync.Mutex
	tokens map[string]*LinkToken
	links  map[string]*IdentityLink
}

func NewMockLinkRepo() *MockLinkRepo {
	return &MockLinkRepo{
		tokens: make(map[string]*LinkToken),
		links:  make(map[string]*IdentityLink),
	}
}

func (m *MockLinkRepo) CreateToken(ctx context.Context, token *LinkToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
	return nil
}

func (m *MockLinkRepo) GetToken(ctx context.Context, token string) (*LinkToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.tokens[token]
	if !ok {
		return nil, ErrTokenNotFound
	}
	copied := *record
	return &copied, nil
}

func (m *MockLinkRepo) DeleteToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

func (m *MockLinkRepo) CreateLink(ctx context.Context, link *IdentityLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[link.ChatChannelID]; ok {
		return ErrAlreadyLinked
	}
	m.links[link.ChatChannelID] = link
	return nil
}

func (m *MockLinkRepo) GetLinkByChannel(ctx context.Context, channelID string) (*IdentityLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[channelID]
	if !ok {
		return nil, ErrNotLinked
	}
	copied := *link
	return &copied, nil
}

func (m *MockLinkRepo) GetLinkByCustomer(ctx context.Context, customerID uuid.UUID) (*IdentityLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, link := range m.links {
		if link.CustomerID == customerID {
			copied := *link
			return &copied, nil
		}
	}
	return nil, ErrNotLinked
}

func (m *MockLinkRepo) DeleteLinkByChannel(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.links[channelID]; !ok {
		return ErrNotLinked
	}
	delete(m.links, channelID)
	return nil
}

type sentMessage struct {
	ChannelID string
	Text      string
}

// MockSender records outbound sends and optionally fails them.
type MockSender struct {
	mu   sync.Mutex
	sent []sentMessage

	SendFunc func(ctx context.Context, channelID, text string) error
}

func (m *MockSender) Send(ctx context.Context, channelID, text string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, channelID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{ChannelID: channelID, Text: text})
	return nil
}

func (m *MockSender) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
