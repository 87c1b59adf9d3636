package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg"
)

// OutboundSubscriber consumes chat delivery requests and sends them to
// the linked channel. A customer without a link is a skip, not an error;
// delivery is best-effort end to end.
type OutboundSubscriber struct {
	subscriber events.Subscriber
	service    *Service
	sender     BotSender
	logger     aqm.Logger
}

func NewOutboundSubscriber(sub events.Subscriber, service *Service, sender BotSender, logger aqm.Logger) *OutboundSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OutboundSubscriber{
		subscriber: sub,
		service:    service,
		sender:     sender,
		logger:     logger,
	}
}

func (s *OutboundSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting chat outbound subscriber", "topic", pkg.ChatOutboundTopic)
	if s.subscriber == nil {
		return fmt.Errorf("chat outbound subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.ChatOutboundTopic, s.handleEvent)
}

func (s *OutboundSubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *OutboundSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var m pkg.ChatMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		s.logger.Error("invalid chat message", "error", err)
		return nil
	}

	customerID, err := uuid.Parse(m.CustomerID)
	if err != nil {
		s.logger.Error("invalid customer id in chat message", "customer_id", m.CustomerID)
		return nil
	}

	link, err := s.service.LinkForCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotLinked) {
			s.logger.Debug("customer has no chat link, skipping", "customer_id", m.CustomerID)
			return nil
		}
		s.logger.Error("cannot resolve chat link", "customer_id", m.CustomerID, "error", err)
		return nil
	}

	if err := s.sender.Send(ctx, link.ChatChannelID, m.Text); err != nil {
		s.logger.Error("chat delivery failed",
			"customer_id", m.CustomerID,
			"channel_id", link.ChatChannelID,
			"error", err)
	}
	return nil
}
