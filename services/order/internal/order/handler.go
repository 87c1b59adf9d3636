package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg"
	"github.com/hawkrclub/hawkr/pkg/enums/orderstatus"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
	orderRepo OrderRepo
	publisher events.Publisher
}

type HandlerDeps struct {
	OrderRepo OrderRepo
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		config:    config,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
		orderRepo: hd.OrderRepo,
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
		r.Put("/{id}/refund", h.SetOrderRefund)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

type orderCreateRequest struct {
	CustomerID string      `json:"customer_id"`
	StallID    string      `json:"stall_id"`
	StallName  string      `json:"stall_name"`
	Items      []OrderItem `json:"items"`
	Currency   string      `json:"currency"`
	PaymentRef string      `json:"payment_ref"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var req orderCreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	stallID, err := uuid.Parse(req.StallID)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}
	if len(req.Items) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Order needs at least one item")
		return
	}

	var total int64
	for _, item := range req.Items {
		if item.Quantity <= 0 || item.PriceCents < 0 {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid item quantity or price")
			return
		}
		total += int64(item.Quantity) * item.PriceCents
	}

	currency := req.Currency
	if currency == "" {
		currency = "sgd"
	}

	order := &Order{
		CustomerID: customerID,
		StallID:    stallID,
		StallName:  req.StallName,
		Items:      req.Items,
		TotalCents: total,
		Currency:   currency,
		Status:     orderstatus.Statuses.Pending.Name,
		PaymentRef: req.PaymentRef,
	}
	order.BeforeCreate()

	if err := h.orderRepo.Create(ctx, order); err != nil {
		log.Error("failed to create order", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	aqm.RespondSuccess(w, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	if customerIDStr := r.URL.Query().Get("customer_id"); customerIDStr != "" {
		customerID, err := uuid.Parse(customerIDStr)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid customer ID")
			return
		}
		orders, err := h.orderRepo.ListByCustomer(ctx, customerID)
		if err != nil {
			log.Error("failed to list orders", "customer_id", customerID.String(), "error", err)
			aqm.RespondError(w, http.StatusInternalServerError, "Failed to list orders")
			return
		}
		aqm.RespondSuccess(w, orders)
		return
	}

	orders, err := h.orderRepo.List(ctx)
	if err != nil {
		log.Error("failed to list orders", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	aqm.RespondSuccess(w, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()
	log := h.log(r)

	order, ok := h.loadOrder(w, r, log)
	if !ok {
		return
	}
	aqm.RespondSuccess(w, order)
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	Source string `json:"source"`
}

// UpdateOrderStatus applies one lifecycle transition and, when the status
// actually changed, publishes the (before, after) pair onto the change
// feed. A write carrying the current status is accepted and does nothing.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	order, ok := h.loadOrder(w, r, log)
	if !ok {
		return
	}

	var req statusUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	newStatus := orderstatus.ByName(req.Status)
	if newStatus == nil {
		aqm.RespondError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	if order.Status == newStatus.Name {
		aqm.RespondSuccess(w, order)
		return
	}

	current := orderstatus.ByName(order.Status)
	if current == nil || !orderstatus.CanTransition(*current, *newStatus) {
		aqm.RespondError(w, http.StatusConflict, "Illegal status transition")
		return
	}

	before := order.Snapshot()
	order.Status = newStatus.Name
	order.BeforeUpdate()

	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("failed to update order status", "order_id", order.ID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	h.publishStatusEvent(ctx, log, before, order.Snapshot(), req.Source)
	aqm.RespondSuccess(w, order)
}

type refundUpdateRequest struct {
	RefundID      string `json:"refund_id"`
	RefundStatus  string `json:"refund_status"`
	RefundedCents int64  `json:"refunded_cents"`
}

// SetOrderRefund persists refund metadata written by the feedback
// resolution workflow. It is not a status transition and publishes no
// change feed event.
func (h *Handler) SetOrderRefund(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetOrderRefund")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	order, ok := h.loadOrder(w, r, log)
	if !ok {
		return
	}

	var req refundUpdateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefundID == "" || req.RefundedCents <= 0 {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid refund metadata")
		return
	}

	order.RefundID = req.RefundID
	order.RefundStatus = req.RefundStatus
	order.RefundedCents = req.RefundedCents
	order.BeforeUpdate()

	if err := h.orderRepo.Save(ctx, order); err != nil {
		log.Error("failed to set order refund", "order_id", order.ID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	aqm.RespondSuccess(w, order)
}

func (h *Handler) loadOrder(w http.ResponseWriter, r *http.Request, log aqm.Logger) (*Order, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
		return nil, false
	}

	order, err := h.orderRepo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Order not found")
			return nil, false
		}
		log.Error("failed to load order", "order_id", id.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to load order")
		return nil, false
	}
	return order, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}

func (h *Handler) publishStatusEvent(ctx context.Context, log aqm.Logger, before, after pkg.OrderSnapshot, source string) {
	if h.publisher == nil {
		return
	}
	if source == "" {
		source = "order-api"
	}
	event := pkg.OrderStatusEvent{
		EventType:  pkg.EventOrderStatusChanged,
		Before:     before,
		After:      after,
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to marshal status event", "order_id", after.OrderID, "error", err)
		return
	}
	if err := h.publisher.Publish(ctx, pkg.OrderStatusTopic, payload); err != nil {
		log.Error("failed to publish status event", "order_id", after.OrderID, "error", err)
	}
}
