package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// StreamNotifications serves the live feed for one scope over SSE. Each
// event carries the full current batch as JSON; the page replaces its
// rendered list wholesale on every frame.
func (h *Handler) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	scope, ok := h.scopeFrom(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	subscriberID, batches := h.hub.Subscribe(scope)
	defer h.hub.Unsubscribe(scope, subscriberID)

	log.Info("new notification stream", "scope", scope.Key(), "subscriber_id", subscriberID)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flush(w)

	// Push the current state immediately so the page doesn't wait for the
	// first change.
	if batch, err := h.service.List(r.Context(), scope); err == nil {
		h.writeBatch(w, batch)
	} else {
		log.Error("initial batch query failed", "scope", scope.Key(), "error", err)
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Info("notification stream closed", "scope", scope.Key(), "subscriber_id", subscriberID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flush(w)

		case batch, ok := <-batches:
			if !ok {
				return
			}
			h.writeBatch(w, batch)
		}
	}
}

func (h *Handler) writeBatch(w http.ResponseWriter, batch []Notification) {
	data, err := json.Marshal(batch)
	if err != nil {
		h.logger.Error("failed to encode notification batch", "error", err)
		return
	}
	fmt.Fprintf(w, "event: notifications\ndata: %s\n\n", data)
	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
