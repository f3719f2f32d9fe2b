package tracking

import (
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
)

// Channel is one subscriber's delivery pipe. Implementations are owned by
// the transport (an SSE response, a test recorder); the hub closes them when
// it drops the subscriber.
type Channel interface {
	Send(path domain.DeliveryPath) error
	Close() error
}

type subscriber struct {
	id   string
	role domain.TrackingRole
	ch   Channel
}

// Hub fans delivery path updates out to the subscribers of each order.
// A failed send drops the subscriber; publishing to an order without
// subscribers is a no-op.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[string]subscriber

	log             logx.Logger
	broadcasts      prometheus.Counter
	deadSubscribers prometheus.Counter
}

// NewHub creates a Hub. Log and the counters may be nil.
func NewHub(log logx.Logger, broadcasts, deadSubscribers prometheus.Counter) *Hub {
	if log == nil {
		log = logx.Nop()
	}
	if broadcasts == nil {
		broadcasts = metrics.NewBroadcastsTotal()
	}
	if deadSubscribers == nil {
		deadSubscribers = metrics.NewDeadSubscribersTotal()
	}
	return &Hub{
		subs:            make(map[uuid.UUID]map[string]subscriber),
		log:             log,
		broadcasts:      broadcasts,
		deadSubscribers: deadSubscribers,
	}
}

// Subscribe registers ch under (orderID, subscriberID). Re-subscribing the
// same ID replaces and closes the previous channel.
func (h *Hub) Subscribe(orderID uuid.UUID, subscriberID string, role domain.TrackingRole, ch Channel) {
	h.mu.Lock()
	byID, ok := h.subs[orderID]
	if !ok {
		byID = make(map[string]subscriber)
		h.subs[orderID] = byID
	}
	prev, replaced := byID[subscriberID]
	byID[subscriberID] = subscriber{id: subscriberID, role: role, ch: ch}
	h.mu.Unlock()

	if replaced {
		_ = prev.ch.Close()
	}
}

// Unsubscribe removes one subscriber and closes its channel. Unknown IDs are
// a no-op.
func (h *Hub) Unsubscribe(orderID uuid.UUID, subscriberID string) {
	h.mu.Lock()
	byID, ok := h.subs[orderID]
	if !ok {
		h.mu.Unlock()
		return
	}
	sub, ok := byID[subscriberID]
	if ok {
		delete(byID, subscriberID)
	}
	if len(byID) == 0 {
		delete(h.subs, orderID)
	}
	h.mu.Unlock()

	if ok {
		_ = sub.ch.Close()
	}
}

// Subscribers returns the current subscriber count for an order.
func (h *Hub) Subscribers(orderID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orderID])
}

// Publish sends the path to every subscriber of the order. Sends run on a
// snapshot taken under the read lock; subscribers whose send fails are
// removed and closed.
func (h *Hub) Publish(orderID uuid.UUID, path domain.DeliveryPath) {
	h.mu.RLock()
	snapshot := make([]subscriber, 0, len(h.subs[orderID]))
	for _, sub := range h.subs[orderID] {
		snapshot = append(snapshot, sub)
	}
	h.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}
	h.broadcasts.Inc()

	var dead []string
	for _, sub := range snapshot {
		if err := sub.ch.Send(path); err != nil {
			dead = append(dead, sub.id)
			h.log.Debug("dropping tracking subscriber",
				logx.String("order_id", orderID.String()),
				logx.String("subscriber_id", sub.id),
				logx.Err(err))
		}
	}
	for _, id := range dead {
		h.deadSubscribers.Inc()
		h.Unsubscribe(orderID, id)
	}
}

// CloseOrder drops every subscriber of the order, closing their channels.
// Called when the order reaches a terminal status.
func (h *Hub) CloseOrder(orderID uuid.UUID) {
	h.mu.Lock()
	byID := h.subs[orderID]
	delete(h.subs, orderID)
	h.mu.Unlock()

	for _, sub := range byID {
		_ = sub.ch.Close()
	}
}
