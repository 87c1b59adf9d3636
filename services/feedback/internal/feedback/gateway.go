package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/refund"
)

// PaymentGateway issues refunds against a previously captured payment.
type PaymentGateway interface {
	Refund(ctx context.Context, paymentRef string, amountCents int64) (*RefundResult, error)
}

// StripeGateway implements PaymentGateway on Stripe payment intents.
type StripeGateway struct {
	logger aqm.Logger
}

func NewStripeGateway(config *aqm.Config, logger aqm.Logger) (*StripeGateway, error) {
	apiKey, _ := config.GetString("stripe.api.key")
	if apiKey == "" {
		return nil, fmt.Errorf("stripe.api.key is required")
	}
	stripe.Key = apiKey

	return &StripeGateway{logger: logger}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentRef string, amountCents int64) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentRef),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}

	g.logger.Info("refund issued",
		"refund_id", r.ID,
		"payment_ref", paymentRef,
		"amount_cents", r.Amount)

	return &RefundResult{
		RefundID:    r.ID,
		AmountCents: r.Amount,
		Currency:    string(r.Currency),
		Status:      string(r.Status),
		ProcessedAt: time.Now(),
	}, nil
}
