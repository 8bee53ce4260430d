package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresBroker carries change events over LISTEN/NOTIFY.
type PostgresBroker struct {
	pool    *pgxpool.Pool
	channel string
	logger  zerolog.Logger

	retryDelay time.Duration
}

// NewPostgresBroker creates a broker notifying on channel.
func NewPostgresBroker(pool *pgxpool.Pool, channel string, logger zerolog.Logger) *PostgresBroker {
	return &PostgresBroker{
		pool:       pool,
		channel:    channel,
		logger:     logger.With().Str("component", "pg_broker").Str("channel", channel).Logger(),
		retryDelay: time.Second,
	}
}

func (b *PostgresBroker) Publish(ctx context.Context, e model.ChangeEvent) error {
	payload, err := encodeEvent(e)
	if err != nil {
		return err
	}

	if _, err := b.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, b.channel, string(payload)); err != nil {
		b.logger.Error().Err(err).Str("table", e.Table).Msg("failed to publish change event")
		return fmt.Errorf("failed to notify %s: %w", b.channel, err)
	}

	metrics.ChangeEvents.WithLabelValues(e.Table, "published").Inc()
	return nil
}

// Listen holds one pooled connection in LISTEN mode. A lost connection is
// re-established after retryDelay until ctx ends.
func (b *PostgresBroker) Listen(ctx context.Context, fn func(model.ChangeEvent)) error {
	for {
		err := b.listenOnce(ctx, fn)
		if ctx.Err() != nil {
			return nil
		}
		b.logger.Warn().Err(err).Dur("retry_in", b.retryDelay).Msg("change listener interrupted")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.retryDelay):
		}
	}
}

func (b *PostgresBroker) listenOnce(ctx context.Context, fn func(model.ChangeEvent)) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{b.channel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.channel, err)
	}

	b.logger.Debug().Msg("listening for notifications")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// The connection state is unknown; drop it from the pool.
			_ = conn.Conn().Close(context.Background())
			return fmt.Errorf("failed waiting for notification: %w", err)
		}

		e, err := decodeEvent([]byte(n.Payload))
		if err != nil {
			b.logger.Warn().Err(err).Str("payload", n.Payload).Msg("ignoring malformed notification")
			continue
		}
		fn(e)
	}
}

// Close is a no-op; the pool is owned by the caller.
func (b *PostgresBroker) Close() error { return nil }
