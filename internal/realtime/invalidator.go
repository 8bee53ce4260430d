package realtime

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Cache is the invalidation side of the query cache.
type Cache interface {
	Invalidate(ctx context.Context, resource, scope string) error
}

// Invalidator drops cached reads for every change event it is handed. The
// event kind is ignored; any change invalidates the whole (table, tenant)
// pair.
type Invalidator struct {
	cache  Cache
	logger zerolog.Logger
}

// NewInvalidator creates an invalidator over cache.
func NewInvalidator(cache Cache, logger zerolog.Logger) *Invalidator {
	return &Invalidator{
		cache:  cache,
		logger: logger.With().Str("component", "invalidator").Logger(),
	}
}

// Handle invalidates the pair named by e. It returns once the cache has
// been updated.
func (i *Invalidator) Handle(ctx context.Context, e model.ChangeEvent) {
	if e.TenantID == uuid.Nil {
		return
	}
	if err := i.cache.Invalidate(ctx, e.Table, e.TenantID.String()); err != nil {
		i.logger.Warn().Err(err).
			Str("table", e.Table).
			Str("tenant_id", e.TenantID.String()).
			Str("op", string(e.Op)).
			Msg("failed to invalidate on change event")
	}
}

// Notify is the publishing half used by services: it invalidates locally,
// then announces the change through broker so other processes follow.
type Notify struct {
	cache  Cache
	broker Broker
	logger zerolog.Logger
}

// NewNotify creates a notifier.
func NewNotify(cache Cache, broker Broker, logger zerolog.Logger) *Notify {
	return &Notify{
		cache:  cache,
		broker: broker,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Changed invalidates (table, scope) and publishes the event. Failures are
// logged; the mutation that triggered them has already succeeded.
func (n *Notify) Changed(ctx context.Context, table string, scope uuid.UUID, op model.ChangeOp) {
	if err := n.cache.Invalidate(ctx, table, scope.String()); err != nil {
		n.logger.Warn().Err(err).Str("table", table).Msg("local invalidation failed")
	}

	e := model.ChangeEvent{Table: table, TenantID: scope, Op: op}
	if err := n.broker.Publish(ctx, e); err != nil {
		n.logger.Warn().Err(err).Str("table", table).Msg("change event not published")
	}
}
