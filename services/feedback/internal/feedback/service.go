package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg"
	"github.com/hawkrclub/hawkr/pkg/enums/role"
)

const (
	typeFeedbackResolved = "feedback_resolved"
	typeRefundProcessed  = "refund_processed"
)

// ResolveRequest is one resolution attempt by an authenticated actor.
type ResolveRequest struct {
	FeedbackID  uuid.UUID
	ActorID     uuid.UUID
	ActorRole   string
	Response    string
	RefundType  string
	RefundCents int64
}

// ResolveResult is what the resolving actor sees. Fan-out failures never
// surface here; once the resolution is persisted the call is a success.
type ResolveResult struct {
	Success      bool   `json:"success"`
	RefundStatus string `json:"refund_status,omitempty"`
	RefundCents  int64  `json:"refund_amount,omitempty"`
}

type Service struct {
	repo      FeedbackRepo
	orders    OrderClient
	gateway   PaymentGateway
	publisher events.Publisher
	logger    aqm.Logger
}

func NewService(repo FeedbackRepo, orders OrderClient, gateway PaymentGateway, publisher events.Publisher, logger aqm.Logger) *Service {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Service{
		repo:      repo,
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and inserts a feedback record. The stall rating
// aggregate moves in the same repo transaction as the insert.
func (s *Service) Create(ctx context.Context, f *Feedback) error {
	if f.Rating < 1 || f.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidArgument)
	}
	if f.CustomerID == uuid.Nil || f.StallID == uuid.Nil {
		return fmt.Errorf("%w: customer and stall are required", ErrInvalidArgument)
	}
	f.BeforeCreate()
	return s.repo.Create(ctx, f)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByStall(ctx context.Context, stallID uuid.UUID) ([]*Feedback, error) {
	return s.repo.ListByStall(ctx, stallID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetStall(ctx context.Context, id uuid.UUID) (*Stall, error) {
	return s.repo.GetStall(ctx, id)
}

// Resolve runs the resolution workflow: validate the request, authorize
// the actor, optionally issue a refund against the authoritative order,
// persist the write-once resolution, then fan out notifications.
//
// The refund is the point of no return. A gateway failure aborts the
// whole operation and leaves the feedback unresolved; anything after a
// successful refund is persisted or logged, never rolled back.
func (s *Service) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResult, error) {
	if err := validateResolveRequest(req); err != nil {
		return nil, err
	}

	f, err := s.repo.Get(ctx, req.FeedbackID)
	if err != nil {
		return nil, err
	}
	if f.IsResolved() {
		return nil, ErrAlreadyResolved
	}

	stall, err := s.repo.GetStall(ctx, f.StallID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, stall, req); err != nil {
		return nil, err
	}

	var refund *RefundResult
	if req.RefundType != RefundNone {
		refund, err = s.issueRefund(ctx, f, req)
		if err != nil {
			return nil, err
		}
	}

	res := &Resolution{
		Type:           resolutionType(req.RefundType),
		Response:       req.Response,
		ResolvedBy:     req.ActorID,
		ResolvedByType: req.ActorRole,
		ResolvedAt:     time.Now(),
		Refund:         refund,
	}

	if err := s.repo.SetResolution(ctx, f.ID, req.Response, res); err != nil {
		return nil, err
	}

	s.fanOut(ctx, f, stall, res)

	result := &ResolveResult{Success: true}
	if refund != nil {
		result.RefundStatus = refund.Status
		result.RefundCents = refund.AmountCents
	}
	return result, nil
}

func validateResolveRequest(req ResolveRequest) error {
	if req.Response == "" {
		return fmt.Errorf("%w: response is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(req.Response) > MaxResponseChars {
		return fmt.Errorf("%w: response exceeds %d characters", ErrInvalidArgument, MaxResponseChars)
	}
	switch req.RefundType {
	case RefundNone, RefundFull:
	case RefundPartial:
		if req.RefundCents <= 0 {
			return fmt.Errorf("%w: partial refund requires a positive amount", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown refund type %q", ErrInvalidArgument, req.RefundType)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, stall *Stall, req ResolveRequest) error {
	switch req.ActorRole {
	case role.Roles.Vendor.Name:
		if stall.VendorID != req.ActorID {
			return fmt.Errorf("%w: vendor does not own this stall", ErrPermissionDenied)
		}
	case role.Roles.Operator.Name:
		centre, err := s.repo.GetCentre(ctx, stall.CentreID)
		if err != nil {
			return err
		}
		if !centre.HasOperator(req.ActorID) {
			return fmt.Errorf("%w: operator does not manage this centre", ErrPermissionDenied)
		}
		if req.RefundType != RefundNone {
			return fmt.Errorf("%w: operators cannot issue refunds", ErrPermissionDenied)
		}
	default:
		return fmt.Errorf("%w: role %q cannot resolve feedback", ErrPermissionDenied, req.ActorRole)
	}
	return nil
}

// issueRefund re-reads the authoritative order, validates the amount
// against its current total, and runs the gateway. The caller never
// supplies the total; the order record is the single source of truth.
func (s *Service) issueRefund(ctx context.Context, f *Feedback, req ResolveRequest) (*RefundResult, error) {
	if f.OrderID == uuid.Nil {
		return nil, fmt.Errorf("%w: feedback has no associated order", ErrInvalidArgument)
	}

	order, err := s.orders.GetOrder(ctx, f.OrderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if order.PaymentRef == "" {
		return nil, fmt.Errorf("%w: order has no captured payment", ErrInvalidArgument)
	}

	amount := order.TotalCents
	if req.RefundType == RefundPartial {
		amount = req.RefundCents
		if amount <= 0 || amount > order.TotalCents {
			return nil, fmt.Errorf("%w: refund amount must be within (0, %d]", ErrInvalidArgument, order.TotalCents)
		}
	}

	refund, err := s.gateway.Refund(ctx, order.PaymentRef, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if refund.Currency == "" {
		refund.Currency = order.Currency
	}

	// The money has moved; a failed metadata write must not undo the
	// resolution. Log and carry on.
	if err := s.orders.RecordRefund(ctx, f.OrderID, refund); err != nil {
		s.logger.Error("failed to record refund on order",
			"order_id", f.OrderID,
			"refund_id", refund.RefundID,
			"error", err)
	}

	return refund, nil
}

// fanOut delivers the three post-resolution notifications. Each is
// independently best-effort; the resolution is already committed. The
// confirmation always lands in the stall vendor's feed, even when an
// operator resolved on the vendor's behalf.
func (s *Service) fanOut(ctx context.Context, f *Feedback, stall *Stall, res *Resolution) {
	now := time.Now()

	customerType := typeFeedbackResolved
	title := "Your Feedback Was Answered"
	message := "The stall has responded to your feedback."
	var refundCents int64
	var refundStatus string
	if res.Refund != nil {
		customerType = typeRefundProcessed
		title = "Refund Processed"
		message = fmt.Sprintf("A refund of %s has been issued for your order.", formatCents(res.Refund.AmountCents, res.Refund.Currency))
		refundCents = res.Refund.AmountCents
		refundStatus = res.Refund.Status
	}

	s.publishNotify(ctx, &pkg.NotifyRequest{
		EventType:    pkg.EventNotifyRequested,
		Role:         role.Roles.Customer.Name,
		OwnerID:      f.CustomerID.String(),
		Type:         customerType,
		Title:        title,
		Message:      message,
		RelatedType:  "feedback",
		RelatedID:    f.ID.String(),
		OrderID:      orderIDString(f),
		FeedbackID:   f.ID.String(),
		RefundCents:  refundCents,
		RefundStatus: refundStatus,
		OccurredAt:   now,
	}, "customer notification")

	s.publishChat(ctx, &pkg.ChatMessage{
		EventType:  pkg.EventChatSendRequested,
		CustomerID: f.CustomerID.String(),
		Text:       chatText(res),
		OrderID:    orderIDString(f),
		FeedbackID: f.ID.String(),
		OccurredAt: now,
	})

	vendorMessage := "Your response has been delivered to the customer."
	if res.ResolvedByType == role.Roles.Operator.Name {
		vendorMessage = "A centre operator responded to feedback on your stall."
	}
	s.publishNotify(ctx, &pkg.NotifyRequest{
		EventType:   pkg.EventNotifyRequested,
		Role:        role.Roles.Vendor.Name,
		OwnerID:     stall.VendorID.String(),
		Type:        typeFeedbackResolved,
		Title:       "Resolution Recorded",
		Message:     vendorMessage,
		RelatedType: "feedback",
		RelatedID:   f.ID.String(),
		FeedbackID:  f.ID.String(),
		OccurredAt:  now,
	}, "vendor notification")
}

func (s *Service) publishNotify(ctx context.Context, req *pkg.NotifyRequest, what string) {
	data, err := json.Marshal(req)
	if err != nil {
		s.logger.Error("failed to encode "+what, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, pkg.NotifyTopic, data); err != nil {
		s.logger.Error("failed to publish "+what, "error", err)
	}
}

func (s *Service) publishChat(ctx context.Context, msg *pkg.ChatMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("failed to encode chat message", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, pkg.ChatOutboundTopic, data); err != nil {
		s.logger.Error("failed to publish chat message", "error", err)
	}
}

func resolutionType(refundType string) string {
	switch refundType {
	case RefundFull:
		return ResolutionFullRefund
	case RefundPartial:
		return ResolutionPartialRefund
	default:
		return ResolutionResponseOnly
	}
}

func chatText(res *Resolution) string {
	if res.Refund != nil {
		return fmt.Sprintf("💬 The stall responded to your feedback and refunded %s: %s",
			formatCents(res.Refund.AmountCents, res.Refund.Currency), res.Response)
	}
	return "💬 The stall responded to your feedback: " + res.Response
}

func formatCents(cents int64, currency string) string {
	if currency == "" {
		currency = "sgd"
	}
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}

func orderIDString(f *Feedback) string {
	if f.OrderID == uuid.Nil {
		return ""
	}
	return f.OrderID.String()
}
