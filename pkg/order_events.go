package pkg

import "time"

const (
	// OrderStatusTopic delivers authoritative order status transitions.
	OrderStatusTopic = "orders.status"

	// EventOrderStatusChanged identifies an order status transition payload.
	EventOrderStatusChanged = "order.status.changed"
)

// OrderSnapshot carries the fields of an order record that downstream
// consumers reason about. Money is in currency minor units.
type OrderSnapshot struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	StallID    string `json:"stall_id"`
	StallName  string `json:"stall_name,omitempty"`
	Status     string `json:"status"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

// OrderStatusEvent is the change feed record for an order write: the
// record as it was before the write and as it is after. Consumers decide
// whether an actual transition occurred by comparing the two.
type OrderStatusEvent struct {
	EventType  string        `json:"event_type"`
	Before     OrderSnapshot `json:"before"`
	After      OrderSnapshot `json:"after"`
	Source     string        `json:"source,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
