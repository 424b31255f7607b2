package live

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
)

// Hub fans events out to every connected dashboard. Its client set is owned
// by the Run goroutine.
type Hub struct {
	clients     map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	broadcast   chan []byte
	done        chan struct{}
	clientCount atomic.Int64
	log         *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed once Run has returned and every client was told to leave.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// Broadcast queues ev for every client. It never blocks: when the hub is
// saturated or stopped the event is dropped.
func (h *Hub) Broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Errorf("live failed to marshal event type=%s: %v", ev.Type, err)
		return
	}

	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- payload:
		metrics.LiveEventsTotal.WithLabelValues(ev.Type).Inc()
	default:
		metrics.LiveDroppedTotal.Inc()
		h.log.Warnf("live broadcast queue full, dropping event type=%s", ev.Type)
	}
}

// NotifyInvalidated matches viewcache.Subscriber.
func (h *Hub) NotifyInvalidated(_ context.Context, key string) {
	h.Broadcast(Event{Type: EventInvalidate, Key: key})
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}
			total := h.clientCount.Add(1)
			metrics.LiveConnectionsActive.Inc()
			metrics.LiveConnectionsTotal.Inc()
			h.log.WithFields(ctx, logger.Fields{
				"client_id": client.id,
				"total":     total,
				"action":    "live_register",
			}).Debug("live client registered")

		case client := <-h.unregister:
			h.remove(client)

		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					metrics.LiveDroppedTotal.Inc()
					h.log.Warnf("live client too slow, disconnecting client_id=%s", client.id)
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.clientCount.Add(-1)
	metrics.LiveConnectionsActive.Dec()
}

func (h *Hub) shutdown() {
	payload, err := json.Marshal(Event{Type: EventShutdown})
	if err != nil {
		h.log.Errorf("live failed to marshal shutdown event: %v", err)
	}

	n := len(h.clients)
	for client := range h.clients {
		if err == nil {
			select {
			case client.send <- payload:
			default:
			}
		}
		h.remove(client)
	}

	h.log.Infof("live hub shutdown completed clients=%d", n)
}
