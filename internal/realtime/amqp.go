package realtime

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

// ChangesExchange is the fanout exchange every process binds a queue to.
const ChangesExchange = "storefront.changes"

// AMQPBroker carries change events over a RabbitMQ fanout exchange.
type AMQPBroker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	logger  zerolog.Logger
}

// NewAMQPBroker dials url and declares the changes exchange.
func NewAMQPBroker(url string, logger zerolog.Logger) (*AMQPBroker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ChangesExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPBroker{
		conn:    conn,
		channel: ch,
		logger:  logger.With().Str("component", "amqp_broker").Logger(),
	}, nil
}

func (b *AMQPBroker) Publish(_ context.Context, e model.ChangeEvent) error {
	body, err := encodeEvent(e)
	if err != nil {
		return err
	}

	b.mu.Lock()
	err = b.channel.Publish(
		ChangesExchange,
		"", // fanout ignores the routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	b.mu.Unlock()
	if err != nil {
		b.logger.Error().Err(err).Str("table", e.Table).Msg("failed to publish change event")
		return fmt.Errorf("failed to publish to %s: %w", ChangesExchange, err)
	}

	metrics.ChangeEvents.WithLabelValues(e.Table, "published").Inc()
	return nil
}

// Listen binds an exclusive auto-delete queue to the exchange and consumes
// it until ctx ends or the broker connection drops.
func (b *AMQPBroker) Listen(ctx context.Context, fn func(model.ChangeEvent)) error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open consumer channel: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", ChangesExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", q.Name, err)
	}

	msgs, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	b.logger.Debug().Str("queue", q.Name).Msg("consuming change events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			e, err := decodeEvent(msg.Body)
			if err != nil {
				b.logger.Warn().Err(err).Msg("ignoring malformed change event")
				continue
			}
			fn(e)
		}
	}
}

// Close cleans up connection and channel
func (b *AMQPBroker) Close() error {
	if err := b.channel.Close(); err != nil {
		return err
	}
	return b.conn.Close()
}
