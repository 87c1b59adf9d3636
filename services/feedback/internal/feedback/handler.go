package feedback

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

type Handler struct {
	service *Service
	config  *aqm.Config
	logger  aqm.Logger
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		config:  config,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/feedback", func(r chi.Router) {
		r.Post("/", h.CreateFeedback)
		r.Get("/", h.ListFeedback)
		r.Get("/{id}", h.GetFeedback)
		r.Delete("/{id}", h.DeleteFeedback)
		r.Post("/{id}/resolve", h.ResolveFeedback)
	})
	r.Get("/stalls/{id}", h.GetStall)
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

type feedbackCreateRequest struct {
	CustomerID string `json:"customer_id"`
	StallID    string `json:"stall_id"`
	OrderID    string `json:"order_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	IsPublic   bool   `json:"is_public"`
}

func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateFeedback")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var req feedbackCreateRequest
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

	f := &Feedback{
		CustomerID: customerID,
		StallID:    stallID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsPublic:   req.IsPublic,
	}
	if req.OrderID != "" {
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			aqm.RespondError(w, http.StatusBadRequest, "Invalid order ID")
			return
		}
		f.OrderID = orderID
	}

	if err := h.service.Create(ctx, f); err != nil {
		h.respondError(w, log, "create feedback", err)
		return
	}

	aqm.RespondSuccess(w, f)
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListFeedback")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	stallID, err := uuid.Parse(r.URL.Query().Get("stall_id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid stall ID")
		return
	}

	records, err := h.service.ListByStall(ctx, stallID)
	if err != nil {
		h.respondError(w, log, "list feedback", err)
		return
	}
	aqm.RespondSuccess(w, records)
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetFeedback")
	defer finish()
	log := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, log, "get feedback", err)
		return
	}
	aqm.RespondSuccess(w, f)
}

func (h *Handler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteFeedback")
	defer finish()
	log := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, log, "delete feedback", err)
		return
	}
	aqm.RespondSuccess(w, map[string]bool{"deleted": true})
}

type resolveRequestBody struct {
	ActorID     string `json:"actor_id"`
	ActorRole   string `json:"actor_role"`
	Response    string `json:"response"`
	RefundType  string `json:"refund_type"`
	RefundCents int64  `json:"refund_amount"`
}

func (h *Handler) ResolveFeedback(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ResolveFeedback")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var body resolveRequestBody
	if !h.decode(w, r, &body) {
		return
	}

	actorID, err := uuid.Parse(body.ActorID)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid actor ID")
		return
	}

	refundType := body.RefundType
	if refundType == "" {
		refundType = RefundNone
	}

	result, err := h.service.Resolve(ctx, ResolveRequest{
		FeedbackID:  id,
		ActorID:     actorID,
		ActorRole:   body.ActorRole,
		Response:    body.Response,
		RefundType:  refundType,
		RefundCents: body.RefundCents,
	})
	if err != nil {
		h.respondError(w, log, "resolve feedback", err)
		return
	}

	aqm.RespondSuccess(w, result)
}

func (h *Handler) GetStall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetStall")
	defer finish()
	log := h.log(r)

	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	stall, err := h.service.GetStall(r.Context(), id)
	if err != nil {
		h.respondError(w, log, "get stall", err)
		return
	}
	aqm.RespondSuccess(w, stall)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
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

// respondError maps workflow error kinds to HTTP statuses. Upstream
// detail (the gateway's message included) is passed through so the
// actor sees why a refund failed.
func (h *Handler) respondError(w http.ResponseWriter, log aqm.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		aqm.RespondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrAlreadyResolved):
		aqm.RespondError(w, http.StatusConflict, "Feedback already resolved")
	case errors.Is(err, ErrPermissionDenied):
		aqm.RespondError(w, http.StatusForbidden, "Not allowed")
	case errors.Is(err, ErrInvalidArgument):
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUpstreamFailure):
		aqm.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error("failed to "+op, "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Internal error")
	}
}
