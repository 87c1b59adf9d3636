package pkg

import "time"

const (
	// NotifyTopic carries in-app notification append requests from
	// producers (order trigger, feedback resolution) to the notification
	// service.
	NotifyTopic = "notify.requests"

	// EventNotifyRequested identifies a notification append request payload.
	EventNotifyRequested = "notify.requested"
)

// NotifyRequest asks the notification service to append one record to the
// log identified by Role/OwnerID. The service assigns id and creation
// timestamp; everything here is payload.
type NotifyRequest struct {
	EventType string `json:"event_type"`
	Role      string `json:"role"`
	OwnerID   string `json:"owner_id"`

	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	// Correlation fields, all optional.
	RelatedType  string `json:"related_type,omitempty"`
	RelatedID    string `json:"related_id,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	FeedbackID   string `json:"feedback_id,omitempty"`
	RefundCents  int64  `json:"refund_cents,omitempty"`
	RefundStatus string `json:"refund_status,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
