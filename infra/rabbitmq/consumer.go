package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/pkg/events"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	defaultPrefetch    = 10
	defaultWorkers     = 1
	processTimeout     = 30 * time.Second
	deadLetterSuffix   = ".dlx"
	deadLetterQueueExt = ".dlq"
)

// EventHandler processes a consumed event. A returned error dead-letters the message.
type EventHandler func(ctx context.Context, event *events.Event) error

type ConsumerConfig struct {
	Exchange       string   // e.g. "inventory.stock"
	QueueName      string   // e.g. "storefront.stock.all.v1"
	RoutingKeys    []string // e.g. ["stock.*.v1"]
	ServiceName    string
	PrefetchCount  int // 0 means 10
	WorkerPoolSize int // messages handled concurrently, 0 means 1
}

type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	serviceName string
	workers     int
}

func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	prefetch := config.PrefetchCount
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}
	if err := channel.Qos(prefetch, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := declareQueues(channel, config); err != nil {
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created",
		zap.String("queue", config.QueueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
	)

	return &Consumer{
		conn:        conn,
		channel:     channel,
		queueName:   config.QueueName,
		serviceName: config.ServiceName,
		workers:     max(config.WorkerPoolSize, defaultWorkers),
	}, nil
}

// declareQueues sets up the exchange, the queue and its dead-letter pair, and their bindings.
func declareQueues(ch *amqp.Channel, config ConsumerConfig) error {
	dlx := config.Exchange + deadLetterSuffix
	dlq := config.QueueName + deadLetterQueueExt

	for _, exchange := range []string{config.Exchange, dlx} {
		if err := declareTopicExchange(ch, exchange); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}

	if _, err := ch.QueueDeclare(config.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlx,
	}); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}

	for _, key := range config.RoutingKeys {
		if err := ch.QueueBind(config.QueueName, key, config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue on %s: %w", key, err)
		}
		if err := ch.QueueBind(dlq, key, dlx, false, nil); err != nil {
			return fmt.Errorf("failed to bind dead-letter queue on %s: %w", key, err)
		}
	}
	return nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(c.queueName, c.serviceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages",
		zap.String("queue", c.queueName),
		zap.Int("workers", c.workers),
	)
	return c.dispatch(ctx, msgs, handler)
}

func (c *Consumer) dispatch(ctx context.Context, msgs <-chan amqp.Delivery, handler EventHandler) error {
	workers := pool.New().WithMaxGoroutines(c.workers)
	defer workers.Wait()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Consumer context cancelled, stopping", zap.String("queue", c.queueName))
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}
			workers.Go(func() {
				c.handleMessage(ctx, msg, handler)
			})
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, handler EventHandler) {
	traceID, _ := msg.Headers["x-trace-id"].(string)
	source, _ := msg.Headers["x-service"].(string)

	logger := zap.L().With(
		zap.String("queue", c.queueName),
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
	)
	logger.Debug("Received message", zap.String("sourceService", source))

	var event events.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Error("Failed to unmarshal event", zap.Error(err))
		nack(logger, msg)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	if err := handler(processCtx, &event); err != nil {
		logger.Error("Failed to process event", zap.String("event", event.Event), zap.Error(err))
		nack(logger, msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to acknowledge message", zap.Error(err))
		return
	}
	logger.Info("Processed event", zap.String("event", event.Event))
}

// nack rejects without requeue so the broker routes the message to the dead-letter queue.
func nack(logger *zap.Logger, msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		logger.Error("Failed to reject message", zap.Error(err))
	}
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			zap.L().Error("Failed to close channel", zap.Error(err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	zap.L().Info("RabbitMQ consumer closed", zap.String("queue", c.queueName))
	return nil
}
