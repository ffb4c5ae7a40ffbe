package realtime

import (
	"context"
	"sync"

	"github.com/labstack/gommon/log"
)

const subscriberBuffer = 64

// Subscription receives events for one topic until Close is called.
type Subscription struct {
	C     <-chan Event
	topic string
	ch    chan Event
	hub   *Hub
	once  sync.Once
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Hub fans events out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}

	// OnDrop is called when a slow subscriber's buffer is full.
	OnDrop func(event Event)
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, topic: topic, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish never blocks on a subscriber: a full buffer drops the event for
// that subscriber only.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[event.Topic] {
		select {
		case sub.ch <- event:
		default:
			log.Warnf("realtime: dropping event %s on %s, subscriber buffer full", event.ID, event.Topic)
			if h.OnDrop != nil {
				h.OnDrop(event)
			}
		}
	}
	return nil
}

func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.topics[sub.topic]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.topic)
	}
	close(sub.ch)
}
