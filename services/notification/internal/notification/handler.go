package notification

import (
	"errors"
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
	hub     *Hub
	logger  aqm.Logger
	config  *aqm.Config
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, hub *Hub, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/{role}/{ownerID}/notifications", func(r chi.Router) {
		r.Get("/", h.ListNotifications)
		r.Get("/unread-count", h.UnreadCount)
		r.Get("/stream", h.StreamNotifications)
		r.Patch("/{id}/read", h.MarkRead)
		r.Patch("/read-all", h.MarkAllRead)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// scopeFrom resolves the scope from the route. Role and owner make up the
// authorization boundary; an invalid pair never reaches the store.
func (h *Handler) scopeFrom(w http.ResponseWriter, r *http.Request) (Scope, bool) {
	scope, err := ParseScope(chi.URLParam(r, "role"), chi.URLParam(r, "ownerID"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid notification scope")
		return Scope{}, false
	}
	return scope, true
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListNotifications")
	defer finish()
	log := h.log(r)

	scope, ok := h.scopeFrom(w, r)
	if !ok {
		return
	}

	batch, err := h.service.List(r.Context(), scope)
	if err != nil {
		log.Error("failed to list notifications", "scope", scope.Key(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	aqm.RespondSuccess(w, batch)
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UnreadCount")
	defer finish()
	log := h.log(r)

	scope, ok := h.scopeFrom(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), scope)
	if err != nil {
		log.Error("failed to count unread", "scope", scope.Key(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to count unread notifications")
		return
	}

	aqm.RespondSuccess(w, map[string]int64{"unread": count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkRead")
	defer finish()
	log := h.log(r)

	scope, ok := h.scopeFrom(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.service.MarkRead(r.Context(), scope, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			aqm.RespondError(w, http.StatusNotFound, "Notification not found")
			return
		}
		log.Error("failed to mark notification read", "scope", scope.Key(), "id", id.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to mark notification read")
		return
	}

	aqm.RespondSuccess(w, map[string]bool{"read": true})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkAllRead")
	defer finish()
	log := h.log(r)

	scope, ok := h.scopeFrom(w, r)
	if !ok {
		return
	}

	count, err := h.service.MarkAllRead(r.Context(), scope)
	if err != nil {
		log.Error("failed to mark all read", "scope", scope.Key(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}

	aqm.RespondSuccess(w, map[string]int64{"updated": count})
}
