package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"storefront/pkg/events"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

var errNotAcknowledged = errors.New("message was not acknowledged by broker")

// Publisher implements events.Publisher on top of a RabbitMQ connection with publisher confirms.
type Publisher struct {
	conn    *amqp.Connection
	service string

	mu       sync.Mutex
	declared map[string]struct{}
}

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	zap.L().Info("RabbitMQ publisher connected", zap.String("service", service))

	return &Publisher{
		conn:     conn,
		service:  service,
		declared: map[string]struct{}{},
	}, nil
}

// Publish sends event to exchange and waits for the broker confirm.
func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	msg, err := newPublishing(event, headers, p.service)
	if err != nil {
		return err
	}

	// Each publish gets its own channel so confirms never interleave.
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open publish channel: %w", err)
	}
	defer ch.Close()

	if err := p.ensureExchange(ch, exchange); err != nil {
		return err
	}

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable confirms: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	routingKey := event.GetRoutingKey()
	if err := ch.PublishWithContext(publishCtx, exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return errNotAcknowledged
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout: %w", publishCtx.Err())
	}

	zap.L().Info("Event published",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("traceId", headers.TraceID),
	)
	return nil
}

func (p *Publisher) ensureExchange(ch *amqp.Channel, exchange string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.declared[exchange]; ok {
		return nil
	}
	if err := declareTopicExchange(ch, exchange); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	p.declared[exchange] = struct{}{}
	return nil
}

func (p *Publisher) IsHealthy() bool {
	return p != nil && p.conn != nil && !p.conn.IsClosed()
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	zap.L().Info("RabbitMQ publisher closed")
	return nil
}

func newPublishing(event *events.Event, headers events.Headers, service string) (amqp.Publishing, error) {
	body, err := event.ToJSON()
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to serialize event: %w", err)
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     event.Timestamp,
		CorrelationId: headers.CorrelationID,
		AppId:         service,
		Headers: amqp.Table{
			"x-trace-id":       headers.TraceID,
			"x-correlation-id": headers.CorrelationID,
			"x-service":        service,
		},
	}, nil
}
