package order

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"

	"github.com/hawkrclub/hawkr/pkg"
)

// StatusSubscriber consumes the order change feed and runs the trigger
// over each (before, after) pair. Redundant writes (no status change)
// fall out of Evaluate as an empty command list.
type StatusSubscriber struct {
	subscriber events.Subscriber
	executor   *Executor
	logger     aqm.Logger
}

func NewStatusSubscriber(sub events.Subscriber, executor *Executor, logger aqm.Logger) *StatusSubscriber {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &StatusSubscriber{
		subscriber: sub,
		executor:   executor,
		logger:     logger,
	}
}

func (s *StatusSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting order status subscriber", "topic", pkg.OrderStatusTopic)
	if s.subscriber == nil {
		return fmt.Errorf("order status subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, pkg.OrderStatusTopic, s.handleEvent)
}

func (s *StatusSubscriber) Stop(ctx context.Context) error {
	return nil
}

func (s *StatusSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt pkg.OrderStatusEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("invalid order status event", "error", err)
		return nil
	}

	cmds := Evaluate(evt.Before, evt.After)
	if len(cmds) == 0 {
		return nil
	}

	s.logger.Debug("order transition observed",
		"order_id", evt.After.OrderID,
		"from", evt.Before.Status,
		"to", evt.After.Status,
		"commands", len(cmds))

	s.executor.Execute(ctx, cmds)
	return nil
}
