package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"

	"github.com/hawkrclub/hawkr/pkg"
)

// NotifySubscriber consumes append requests published by producers (the
// order trigger, the feedback resolution workflow) and writes them to the
// store. Malformed requests are logged and dropped; this feed has no
// caller to report back to.
type NotifySubscriber struct {
	subscriber events.Subscriber
	service    *Service
	logger     aqm.Logger
}

func NewNotifySubscriber(sub events.Subscriber, service *Service, logger aqm.Logger) *NotifySubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &NotifySubscriber{
		subscriber: sub,
		service:    service,
		logger:     logger,
	}
}

func (s *NotifySubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting notify subscriber", "topic", pkg.NotifyTopic)
	if s.subscriber == nil {
		return fmt.Errorf("notify subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.NotifyTopic, s.handleEvent)
}

func (s *NotifySubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *NotifySubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var req pkg.NotifyRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		s.logger.Error("invalid notify request", "error", err)
		return nil
	}

	scope, err := ParseScope(req.Role, req.OwnerID)
	if err != nil {
		s.logger.Error("notify request with bad scope", "role", req.Role, "owner_id", req.OwnerID, "error", err)
		return nil
	}

	n := &Notification{
		Type:         req.Type,
		Title:        req.Title,
		Message:      req.Message,
		RelatedType:  req.RelatedType,
		RelatedID:    req.RelatedID,
		OrderID:      req.OrderID,
		FeedbackID:   req.FeedbackID,
		RefundCents:  req.RefundCents,
		RefundStatus: req.RefundStatus,
	}

	if _, err := s.service.Append(ctx, scope, n); err != nil {
		s.logger.Error("failed to append notification", "scope", scope.Key(), "type", req.Type, "error", err)
		return err
	}

	s.logger.Debug("notification appended", "scope", scope.Key(), "type", req.Type)
	return nil
}
