package notification

import (
	"context"
	"sync"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"

	"github.com/hawkrclub/hawkr/pkg"
)

// Hub is the live subscription layer: one feed per open page per scope.
// Store changes are funneled through a debounced bus keyed by scope, so a
// burst of appends against one log produces a single re-query. On every
// delivery each subscriber receives the entire current top batch, not a
// diff; the presentation side just replaces what it has.
type Hub struct {
	bus    *pkg.DebouncedBus
	repo   NotificationRepo
	logger aqm.Logger

	mu     sync.Mutex
	scopes map[string]*hubScope
}

type hubScope struct {
	scope       Scope
	subscribers map[string]chan []Notification
	busUnsub    func()
}

func NewHub(bus *pkg.DebouncedBus, repo NotificationRepo, logger aqm.Logger) *Hub {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Hub{
		bus:    bus,
		repo:   repo,
		logger: logger,
		scopes: make(map[string]*hubScope),
	}
}

// Subscribe opens a live feed for the scope. The returned channel carries
// whole ordered batches; slow consumers have stale batches dropped in
// favor of newer ones.
func (h *Hub) Subscribe(scope Scope) (string, <-chan []Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := scope.Key()
	hs, ok := h.scopes[key]
	if !ok {
		hs = &hubScope{
			scope:       scope,
			subscribers: make(map[string]chan []Notification),
		}
		hs.busUnsub = h.bus.Subscribe(key, func(payload interface{}) {
			h.fanOut(scope)
		})
		h.scopes[key] = hs
	}

	id := uuid.New().String()
	ch := make(chan []Notification, 1)
	hs.subscribers[id] = ch

	h.logger.Debug("hub subscriber added", "scope", key, "subscriber_id", id)
	return id, ch
}

// Unsubscribe closes one feed. When the last feed for a scope goes away
// the bus subscription is released too.
func (h *Hub) Unsubscribe(scope Scope, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := scope.Key()
	hs, ok := h.scopes[key]
	if !ok {
		return
	}
	ch, ok := hs.subscribers[id]
	if !ok {
		return
	}
	delete(hs.subscribers, id)
	close(ch)

	if len(hs.subscribers) == 0 {
		hs.busUnsub()
		delete(h.scopes, key)
	}
	h.logger.Debug("hub subscriber removed", "scope", key, "subscriber_id", id)
}

// Changed signals that the scope's log mutated. Deliveries coalesce per
// scope behind the bus's debounce window.
func (h *Hub) Changed(scope Scope) {
	h.bus.Publish(scope.Key(), scope)
}

func (h *Hub) fanOut(scope Scope) {
	batch, err := h.repo.ListRecent(context.Background(), scope, BatchLimit)
	if err != nil {
		h.logger.Error("hub batch query failed", "scope", scope.Key(), "error", err)
		return
	}

	// Sends stay under the lock so Unsubscribe cannot close a channel
	// mid-delivery; they are non-blocking, so the lock is held briefly.
	h.mu.Lock()
	defer h.mu.Unlock()

	hs, ok := h.scopes[scope.Key()]
	if !ok {
		return
	}
	for _, ch := range hs.subscribers {
		// Replace a stale undelivered batch rather than block.
		select {
		case ch <- batch:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- batch:
			default:
			}
		}
	}
}
