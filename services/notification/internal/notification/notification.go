package notification

import (
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg/enums/role"
)

// Notification types produced by the order trigger and the feedback
// resolution workflow.
const (
	TypeOrderConfirmed   = "order_confirmed"
	TypeOrderPreparing   = "order_preparing"
	TypeOrderReady       = "order_ready"
	TypeOrderComplete    = "order_complete"
	TypeOrderCancelled   = "order_cancelled"
	TypeFeedbackResolved = "feedback_resolved"
	TypeRefundProcessed  = "refund_processed"
)

// Scope identifies whose notification log is being operated on. Every
// repo and service operation is parameterized by a scope; there is no way
// to reach another owner's records through it.
type Scope struct {
	Role    role.Role
	OwnerID uuid.UUID
}

func NewScope(r role.Role, ownerID uuid.UUID) Scope {
	return Scope{Role: r, OwnerID: ownerID}
}

// ParseScope builds a scope from wire values, validating the role name.
func ParseScope(roleName, ownerID string) (Scope, error) {
	r := role.ByName(roleName)
	if r == nil {
		return Scope{}, fmt.Errorf("unknown role %q", roleName)
	}
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return Scope{}, fmt.Errorf("invalid owner id %q", ownerID)
	}
	return Scope{Role: *r, OwnerID: id}, nil
}

// Key returns a stable identifier for the scope, used as the in-process
// bus topic for change coalescing.
func (s Scope) Key() string {
	return s.Role.Name + ":" + s.OwnerID.String()
}

// Notification is one record of a per-owner append-only log. Payload
// fields are immutable once created; only IsRead/ReadAt ever change.
type Notification struct {
	ID      uuid.UUID `json:"id" bson:"_id"`
	Type    string    `json:"type" bson:"type"`
	Title   string    `json:"title" bson:"title"`
	Message string    `json:"message" bson:"message"`

	IsRead bool       `json:"is_read" bson:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`

	RelatedType  string `json:"related_type,omitempty" bson:"related_type,omitempty"`
	RelatedID    string `json:"related_id,omitempty" bson:"related_id,omitempty"`
	OrderID      string `json:"order_id,omitempty" bson:"order_id,omitempty"`
	FeedbackID   string `json:"feedback_id,omitempty" bson:"feedback_id,omitempty"`
	RefundCents  int64  `json:"refund_cents,omitempty" bson:"refund_cents,omitempty"`
	RefundStatus string `json:"refund_status,omitempty" bson:"refund_status,omitempty"`

	// CreatedAt is server-assigned at append time; Seq breaks ties between
	// records appended within the same clock tick.
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Seq       uint64    `json:"-" bson:"seq"`
}

func (n *Notification) GetID() uuid.UUID {
	return n.ID
}

func (n *Notification) ResourceType() string {
	return "notification"
}

func (n *Notification) EnsureID() {
	if n.ID == uuid.Nil {
		n.ID = aqm.GenerateNewID()
	}
}
