package realtime

import (
	"context"
	"sync"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Topic selects change events. An empty Table matches every table and
// uuid.Nil matches every tenant.
type Topic struct {
	Table    string
	TenantID uuid.UUID
}

// Matches reports whether e falls under the topic.
func (t Topic) Matches(e model.ChangeEvent) bool {
	if t.Table != "" && t.Table != e.Table {
		return false
	}
	if t.TenantID != uuid.Nil && t.TenantID != e.TenantID {
		return false
	}
	return true
}

// Subscription delivers matching events on C until it is closed.
type Subscription struct {
	C <-chan model.ChangeEvent

	ch    chan model.ChangeEvent
	done  chan struct{}
	topic Topic
	hub   *Hub
	once  sync.Once
}

// Close detaches the subscription from the hub and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.done)
	})
}

// Hub fans change events out to in-process subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With().Str("component", "hub").Logger(),
	}
}

// Subscribe registers interest in topic. The subscription closes when ctx
// ends or Close is called. buffer bounds how many events may queue before
// further events are dropped for this subscriber.
func (h *Hub) Subscribe(ctx context.Context, topic Topic, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan model.ChangeEvent, buffer)
	sub := &Subscription{C: ch, ch: ch, done: make(chan struct{}), topic: topic, hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// Publish delivers e to every matching subscriber without blocking.
func (h *Hub) Publish(e model.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if !sub.topic.Matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.logger.Warn().
				Str("table", e.Table).
				Str("tenant_id", e.TenantID.String()).
				Msg("subscriber queue full, dropping change event")
		}
	}
}

// Len returns the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	close(s.ch)
	h.mu.Unlock()
}
