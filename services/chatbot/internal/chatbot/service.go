package chatbot

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

type Service struct {
	repo   LinkRepo
	logger aqm.Logger
}

func NewService(repo LinkRepo, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// IssueToken mints a fresh link token for a customer. The token is the
// only secret in the linking flow; it travels out of band (shown in the
// app) and back in through chat.
func (s *Service) IssueToken(ctx context.Context, customerID uuid.UUID) (*LinkToken, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("cannot generate token: %w", err)
	}

	now := time.Now()
	token := &LinkToken{
		ID:         aqm.GenerateNewID(),
		CustomerID: customerID,
		Token:      hex.EncodeToString(raw),
		ExpiresAt:  now.Add(TokenTTL),
		CreatedAt:  now,
	}

	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("cannot store token: %w", err)
	}
	return token, nil
}

// Link redeems a token for a channel. An expired token is consumed on
// sight, so the caller sees "expired" exactly once and "not found" on
// any retry. The channel must not already hold a link.
func (s *Service) Link(ctx context.Context, channelID, displayName, token string) (*IdentityLink, error) {
	record, err := s.repo.GetToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if record.Expired(time.Now()) {
		if err := s.repo.DeleteToken(ctx, token); err != nil {
			s.logger.Error("cannot clear expired token", "error", err)
		}
		return nil, ErrTokenExpired
	}

	if _, err := s.repo.GetLinkByChannel(ctx, channelID); err == nil {
		return nil, ErrAlreadyLinked
	} else if !errors.Is(err, ErrNotLinked) {
		return nil, err
	}

	link := &IdentityLink{
		CustomerID:    record.CustomerID,
		ChatChannelID: channelID,
		DisplayName:   displayName,
		LinkedAt:      time.Now(),
	}
	link.EnsureID()

	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	if err := s.repo.DeleteToken(ctx, token); err != nil {
		s.logger.Error("cannot consume token", "error", err)
	}

	s.logger.Info("channel linked",
		"customer_id", link.CustomerID,
		"channel_id", channelID)
	return link, nil
}

func (s *Service) Unlink(ctx context.Context, channelID string) error {
	return s.repo.DeleteLinkByChannel(ctx, channelID)
}

func (s *Service) Status(ctx context.Context, channelID string) (*IdentityLink, error) {
	return s.repo.GetLinkByChannel(ctx, channelID)
}

func (s *Service) LinkForCustomer(ctx context.Context, customerID uuid.UUID) (*IdentityLink, error) {
	return s.repo.GetLinkByCustomer(ctx, customerID)
}
