package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// OrderView is the projection of an order the resolution workflow needs:
// the authoritative total to validate refund bounds against, and the
// payment reference to refund through.
type OrderView struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StallID    uuid.UUID `json:"stall_id"`
	StallName  string    `json:"stall_name"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	PaymentRef string    `json:"payment_ref"`
}

// OrderClient reads and writes order records owned by the order service.
type OrderClient interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error)
	RecordRefund(ctx context.Context, orderID uuid.UUID, refund *RefundResult) error
}

// APIOrderClient implements OrderClient against the order service HTTP API.
type APIOrderClient struct {
	client *aqm.ServiceClient
	logger aqm.Logger
}

func NewAPIOrderClient(config *aqm.Config, logger aqm.Logger) (*APIOrderClient, error) {
	orderURL, _ := config.GetString("services.order.url")
	if orderURL == "" {
		return nil, fmt.Errorf("services.order.url is required")
	}

	client := aqm.NewServiceClient(orderURL)
	if client == nil {
		return nil, fmt.Errorf("failed to create order service client")
	}

	return &APIOrderClient{
		client: client,
		logger: logger,
	}, nil
}

func (c *APIOrderClient) GetOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	resp, err := c.client.Get(ctx, "orders", id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}

	var view OrderView
	if err := rehydrate(resp.Data, &view); err != nil {
		return nil, fmt.Errorf("failed to decode order %s: %w", id, err)
	}
	return &view, nil
}

type refundRecord struct {
	RefundID      string `json:"refund_id"`
	RefundStatus  string `json:"refund_status"`
	RefundedCents int64  `json:"refunded_cents"`
}

func (c *APIOrderClient) RecordRefund(ctx context.Context, orderID uuid.UUID, refund *RefundResult) error {
	payload := refundRecord{
		RefundID:      refund.RefundID,
		RefundStatus:  refund.Status,
		RefundedCents: refund.AmountCents,
	}
	if _, err := c.client.Update(ctx, "orders", orderID.String()+"/refund", payload); err != nil {
		return fmt.Errorf("failed to record refund on order %s: %w", orderID, err)
	}
	return nil
}

func rehydrate(data interface{}, out interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}
