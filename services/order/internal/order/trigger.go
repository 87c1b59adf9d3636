package order

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"

	"github.com/hawkrclub/hawkr/pkg"
	"github.com/hawkrclub/hawkr/pkg/enums/role"
)

// Command is one side effect produced by an observed status transition.
// Exactly one of the fields is set.
type Command struct {
	Notify *pkg.NotifyRequest
	Chat   *pkg.ChatMessage
}

// Evaluate turns one change feed pair into the side effects to run.
// It is a pure function: no transition (same status on both sides, or a
// status without templates) means no commands. When commands are
// produced, the in-app notification always comes first; a chat command
// follows only for statuses that have a chat template.
func Evaluate(before, after pkg.OrderSnapshot) []Command {
	if before.Status == after.Status {
		return nil
	}

	tmpl, ok := inAppTemplates[after.Status]
	if !ok {
		return nil
	}

	now := time.Now()
	cmds := []Command{{
		Notify: &pkg.NotifyRequest{
			EventType:   pkg.EventNotifyRequested,
			Role:        role.Roles.Customer.Name,
			OwnerID:     after.CustomerID,
			Type:        notificationTypes[after.Status],
			Title:       tmpl.title,
			Message:     tmpl.message(after),
			RelatedType: "order",
			RelatedID:   after.OrderID,
			OrderID:     after.OrderID,
			OccurredAt:  now,
		},
	}}

	if chatTmpl, ok := chatTemplates[after.Status]; ok {
		cmds = append(cmds, Command{
			Chat: &pkg.ChatMessage{
				EventType:  pkg.EventChatSendRequested,
				CustomerID: after.CustomerID,
				Text:       chatTmpl(after),
				OrderID:    after.OrderID,
				OccurredAt: now,
			},
		})
	}

	return cmds
}

// Executor runs trigger commands against the event transport. Each
// command is independently best-effort: a failed publish is logged and
// the remaining commands still run. The trigger fires from a change feed
// with no caller to report back to, so there is no retry either.
type Executor struct {
	publisher events.Publisher
	logger    aqm.Logger
}

func NewExecutor(publisher events.Publisher, logger aqm.Logger) *Executor {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Executor{
		publisher: publisher,
		logger:    logger,
	}
}

func (e *Executor) Execute(ctx context.Context, cmds []Command) {
	for _, cmd := range cmds {
		switch {
		case cmd.Notify != nil:
			e.publish(ctx, pkg.NotifyTopic, cmd.Notify, "in-app notification")
		case cmd.Chat != nil:
			e.publish(ctx, pkg.ChatOutboundTopic, cmd.Chat, "chat message")
		}
	}
}

func (e *Executor) publish(ctx context.Context, topic string, payload interface{}, what string) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("failed to encode "+what, "topic", topic, "error", err)
		return
	}
	if err := e.publisher.Publish(ctx, topic, data); err != nil {
		e.logger.Error("failed to publish "+what, "topic", topic, "error", err)
	}
}
