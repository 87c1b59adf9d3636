package feedback

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// Resolution types.
const (
	ResolutionResponseOnly  = "response_only"
	ResolutionFullRefund    = "full_refund"
	ResolutionPartialRefund = "partial_refund"
)

// Refund request kinds accepted by the resolve operation.
const (
	RefundNone    = "none"
	RefundFull    = "full"
	RefundPartial = "partial"
)

// MaxResponseChars bounds the resolving actor's response text.
const MaxResponseChars = 1000

// Feedback is one customer review of a stall, optionally tied to an
// order. A feedback record is resolved at most once; Resolution stays
// nil until then.
type Feedback struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	CustomerID uuid.UUID `json:"customer_id" bson:"customer_id"`
	StallID    uuid.UUID `json:"stall_id" bson:"stall_id"`
	OrderID    uuid.UUID `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	IsPublic   bool      `json:"is_public" bson:"is_public"`

	// StallResponse mirrors Resolution.Response for display; older
	// clients read only this field.
	StallResponse string      `json:"stall_response,omitempty" bson:"stall_response,omitempty"`
	Resolution    *Resolution `json:"resolution,omitempty" bson:"resolution,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Resolution is the write-once record of how a feedback was handled.
type Resolution struct {
	Type           string        `json:"type" bson:"type"`
	Response       string        `json:"response" bson:"response"`
	ResolvedBy     uuid.UUID     `json:"resolved_by" bson:"resolved_by"`
	ResolvedByType string        `json:"resolved_by_type" bson:"resolved_by_type"`
	ResolvedAt     time.Time     `json:"resolved_at" bson:"resolved_at"`
	Refund         *RefundResult `json:"refund,omitempty" bson:"refund,omitempty"`
}

// RefundResult is the gateway's answer to a refund request. Amounts are
// in currency minor units.
type RefundResult struct {
	RefundID    string    `json:"refund_id" bson:"refund_id"`
	AmountCents int64     `json:"amount_cents" bson:"amount_cents"`
	Currency    string    `json:"currency" bson:"currency"`
	Status      string    `json:"status" bson:"status"`
	ProcessedAt time.Time `json:"processed_at" bson:"processed_at"`
}

// Stall carries the running rating aggregate alongside ownership fields
// used for resolution authorization.
type Stall struct {
	ID       uuid.UUID `json:"id" bson:"_id"`
	Name     string    `json:"name" bson:"name"`
	CentreID uuid.UUID `json:"centre_id" bson:"centre_id"`
	VendorID uuid.UUID `json:"vendor_id" bson:"vendor_id"`

	AverageRating float64 `json:"average_rating" bson:"average_rating"`
	TotalReviews  int64   `json:"total_reviews" bson:"total_reviews"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Centre is a hawker centre; operators listed here may resolve feedback
// for any stall in the centre.
type Centre struct {
	ID          uuid.UUID   `json:"id" bson:"_id"`
	Name        string      `json:"name" bson:"name"`
	OperatorIDs []uuid.UUID `json:"operator_ids" bson:"operator_ids"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (f *Feedback) GetID() uuid.UUID {
	return f.ID
}

func (f *Feedback) ResourceType() string {
	return "feedback"
}

func (f *Feedback) EnsureID() {
	if f.ID == uuid.Nil {
		f.ID = aqm.GenerateNewID()
	}
}

func (f *Feedback) BeforeCreate() {
	f.EnsureID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Now()
}

func (f *Feedback) IsResolved() bool {
	return f.Resolution != nil
}

func (c *Centre) HasOperator(id uuid.UUID) bool {
	for _, op := range c.OperatorIDs {
		if op == id {
			return true
		}
	}
	return false
}
