package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Broker carries change events between processes.
type Broker interface {
	// Publish announces a change.
	Publish(ctx context.Context, e model.ChangeEvent) error

	// Listen delivers every announced change to fn until ctx ends.
	Listen(ctx context.Context, fn func(model.ChangeEvent)) error

	Close() error
}

// LocalBroker delivers events within the process through a Hub.
type LocalBroker struct {
	hub *Hub
}

// NewLocalBroker creates a broker backed by hub.
func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, e model.ChangeEvent) error {
	metrics.ChangeEvents.WithLabelValues(e.Table, "published").Inc()
	b.hub.Publish(e)
	return nil
}

// Listen is a no-op wait: published events already reach the hub.
func (b *LocalBroker) Listen(ctx context.Context, _ func(model.ChangeEvent)) error {
	<-ctx.Done()
	return nil
}

func (b *LocalBroker) Close() error { return nil }

// Pump runs broker.Listen. Every received event is handed to inv before
// the listener moves on, then fanned out through hub. Hub delivery may drop
// events for slow subscribers; invalidation never does.
func Pump(ctx context.Context, broker Broker, hub *Hub, inv *Invalidator, logger zerolog.Logger) error {
	logger.Info().Msg("listening for change events")

	return broker.Listen(ctx, func(e model.ChangeEvent) {
		metrics.ChangeEvents.WithLabelValues(e.Table, "received").Inc()
		inv.Handle(ctx, e)
		hub.Publish(e)
	})
}

func encodeEvent(e model.ChangeEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change event: %w", err)
	}
	return payload, nil
}

func decodeEvent(payload []byte) (model.ChangeEvent, error) {
	var e model.ChangeEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, fmt.Errorf("failed to decode change event: %w", err)
	}
	if e.Table == "" {
		return e, fmt.Errorf("change event has no table")
	}
	return e, nil
}
