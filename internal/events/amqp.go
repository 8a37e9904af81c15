package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/rpggio/grantflow/internal/observability/metrics"
)

const exchangeKind = "topic"

// AMQPConfig configures the AMQP publisher.
type AMQPConfig struct {
	URL           string
	Exchange      string
	RoutingPrefix string
	MaxRetryTimes uint
	RetryInterval time.Duration
}

// AMQPPublisher publishes events as persistent JSON messages on a topic exchange.
type AMQPPublisher struct {
	cfg  AMQPConfig
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.Exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial amqp broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}
	if cfg.MaxRetryTimes == 0 {
		cfg.MaxRetryTimes = 1
	}
	return &AMQPPublisher{cfg: cfg, conn: conn, ch: ch}, nil
}

// Publish sends evt, retrying transient failures.
func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := newPublishing(evt)
	if err != nil {
		return err
	}
	key := RoutingKey(p.cfg.RoutingPrefix, evt.Type)

	err = retry.Do(
		func() error {
			p.mu.Lock()
			defer p.mu.Unlock()
			return p.ch.PublishWithContext(ctx, p.cfg.Exchange, key, false, false, msg)
		},
		retry.Context(ctx),
		retry.Attempts(p.cfg.MaxRetryTimes),
		retry.Delay(p.cfg.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().Err(err).Uint("attempt", n+1).Str("routing_key", key).Msg("retrying event publish")
		}),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish %s event: %w", evt.Type, err)
	}
	return nil
}

// Close releases the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return p.conn.Close()
}

func newPublishing(evt Event) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    evt.OccurredAt,
		Type:         evt.Type,
		Body:         body,
	}, nil
}
