package order

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg"
)

// Order is one customer order against one stall. Money is kept in
// currency minor units throughout; the total is the authoritative value
// refunds are validated against.
type Order struct {
	ID         uuid.UUID   `json:"id" bson:"_id"`
	CustomerID uuid.UUID   `json:"customer_id" bson:"customer_id"`
	StallID    uuid.UUID   `json:"stall_id" bson:"stall_id"`
	StallName  string      `json:"stall_name,omitempty" bson:"stall_name,omitempty"`
	Items      []OrderItem `json:"items" bson:"items"`
	TotalCents int64       `json:"total_cents" bson:"total_cents"`
	Currency   string      `json:"currency" bson:"currency"`
	Status     string      `json:"status" bson:"status"`

	// PaymentRef is the payment processor's reference for the captured
	// charge, set at checkout. Refunds are issued against it.
	PaymentRef string `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`

	// Refund metadata, written once by the feedback resolution workflow.
	RefundID      string `json:"refund_id,omitempty" bson:"refund_id,omitempty"`
	RefundStatus  string `json:"refund_status,omitempty" bson:"refund_status,omitempty"`
	RefundedCents int64  `json:"refunded_cents,omitempty" bson:"refunded_cents,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type OrderItem struct {
	Name       string `json:"name" bson:"name"`
	Quantity   int    `json:"quantity" bson:"quantity"`
	PriceCents int64  `json:"price_cents" bson:"price_cents"`
	Notes      string `json:"notes,omitempty" bson:"notes,omitempty"`
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// Snapshot projects the order into the change feed shape.
func (o *Order) Snapshot() pkg.OrderSnapshot {
	return pkg.OrderSnapshot{
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		StallID:    o.StallID.String(),
		StallName:  o.StallName,
		Status:     o.Status,
		TotalCents: o.TotalCents,
		Currency:   o.Currency,
	}
}
