package http

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// Subscriber is the outbound queue of one open preview page
type Subscriber struct {
	ID     string
	Remote string
	Send   chan ports.UpdateEvent
}

// Hub fans preview events out to subscribers. While the last build is
// failing, pages that join later are sent the error so they show it too.
type Hub struct {
	subs    map[string]*Subscriber
	events  chan ports.UpdateEvent
	join    chan *Subscriber
	leave   chan string
	failure *ports.UpdateEvent
	mu      sync.RWMutex
	done    chan struct{}
	logger  *slog.Logger
}

// NewHub creates a hub; Run must be started before events flow
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[string]*Subscriber),
		events: make(chan ports.UpdateEvent, 256),
		join:   make(chan *Subscriber),
		leave:  make(chan string),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run serves joins, leaves and events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.join:
			h.add(sub)
		case id := <-h.leave:
			h.drop(id)
		case event := <-h.events:
			h.fanOut(event)
		}
	}
}

func (h *Hub) add(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subs[sub.ID] = sub
	if h.failure != nil {
		select {
		case sub.Send <- *h.failure:
		default:
		}
	}
	h.logger.Debug("Preview client joined", slog.String("client", sub.ID), slog.String("remote", sub.Remote))
}

func (h *Hub) fanOut(event ports.UpdateEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case ports.EventTypeError:
		h.failure = &event
	case ports.EventTypeReload:
		h.failure = nil
	}

	for id, sub := range h.subs {
		select {
		case sub.Send <- event:
		default:
			h.logger.Warn("Dropping slow preview client", slog.String("client", id))
			close(sub.Send)
			delete(h.subs, id)
		}
	}
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.Send)
	}
}

// Join registers sub. After shutdown its queue is closed straight away.
func (h *Hub) Join(sub *Subscriber) {
	select {
	case h.join <- sub:
	case <-h.done:
		close(sub.Send)
	}
}

// Leave unregisters the subscriber with id
func (h *Hub) Leave(id string) {
	select {
	case h.leave <- id:
	case <-h.done:
		h.drop(id)
	}
}

// Publish queues event for every subscriber
func (h *Hub) Publish(event ports.UpdateEvent) {
	select {
	case h.events <- event:
	case <-h.done:
	}
}

// Count returns the number of joined subscribers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Failing reports whether the last published build event was an error
func (h *Hub) Failing() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.failure != nil
}

// Close drops every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		close(sub.Send)
		delete(h.subs, id)
	}
}
