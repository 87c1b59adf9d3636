package pkg

import "time"

const (
	// ChatOutboundTopic carries chat delivery requests addressed to a
	// customer. The chatbot service resolves the customer's channel link;
	// unlinked customers are a silent skip, not an error.
	ChatOutboundTopic = "chat.outbound"

	// EventChatSendRequested identifies a chat delivery request payload.
	EventChatSendRequested = "chat.send.requested"
)

// ChatMessage asks the chatbot service to deliver Text to the channel
// linked to CustomerID, if any. Delivery is best-effort end to end.
type ChatMessage struct {
	EventType  string    `json:"event_type"`
	CustomerID string    `json:"customer_id"`
	Text       string    `json:"text"`
	OrderID    string    `json:"order_id,omitempty"`
	FeedbackID string    `json:"feedback_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
