package chatbot

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
	bot     *Bot
	sender  BotSender
	config  *aqm.Config
	logger  aqm.Logger
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, bot *Bot, sender BotSender, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		service: service,
		bot:     bot,
		sender:  sender,
		config:  config,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.Webhook)
	r.Route("/links", func(r chi.Router) {
		r.Post("/tokens", h.IssueToken)
		r.Get("/{customerID}", h.GetLink)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

type webhookUpdate struct {
	ChannelID   string `json:"channel_id"`
	DisplayName string `json:"display_name"`
	Text        string `json:"text"`
}

// Webhook receives one inbound message from the chat platform, runs it
// through the command registry, and replies on the same channel. The
// platform retries non-2xx responses, so processing failures still
// return 200 once the update has been decoded.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Webhook")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var update webhookUpdate
	if !h.decode(w, r, &update) {
		return
	}
	if update.ChannelID == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Missing channel ID")
		return
	}

	response, err := h.bot.Process(ctx, ChannelInfo{
		ChannelID:   update.ChannelID,
		DisplayName: update.DisplayName,
	}, update.Text)
	if err != nil {
		log.Error("command processing failed", "channel_id", update.ChannelID, "error", err)
		aqm.RespondSuccess(w, map[string]bool{"ok": true})
		return
	}

	if err := h.sender.Send(ctx, update.ChannelID, response.Text); err != nil {
		log.Error("failed to send reply", "channel_id", update.ChannelID, "error", err)
	}

	aqm.RespondSuccess(w, map[string]bool{"ok": true})
}

type issueTokenRequest struct {
	CustomerID string `json:"customer_id"`
}

// IssueToken mints a link token for the app to show the customer.
// Internal endpoint; the app backend calls it, never the chat platform.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.IssueToken")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var req issueTokenRequest
	if !h.decode(w, r, &req) {
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	token, err := h.service.IssueToken(ctx, customerID)
	if err != nil {
		log.Error("failed to issue token", "customer_id", customerID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	aqm.RespondSuccess(w, token)
}

func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetLink")
	defer finish()
	log := h.log(r)

	customerID, err := uuid.Parse(chi.URLParam(r, "customerID"))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	link, err := h.service.LinkForCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, ErrNotLinked) {
			aqm.RespondError(w, http.StatusNotFound, "Customer not linked")
			return
		}
		log.Error("failed to get link", "customer_id", customerID.String(), "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Failed to get link")
		return
	}

	aqm.RespondSuccess(w, link)
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
