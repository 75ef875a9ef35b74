package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carvedrock/internal/domain"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RoutingKeyProductCreated is the topic key used for new catalog entries.
const RoutingKeyProductCreated = "product.created"

// Publisher announces catalog changes to other systems.
type Publisher interface {
	PublishProductCreated(ctx context.Context, product domain.Product) error
	Close() error
}

// ProductCreated is the body of a product.created message.
type ProductCreated struct {
	EventID    string         `json:"eventId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Product    domain.Product `json:"product"`
}

// channel is the subset of *amqp.Channel the publisher needs
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	channel  channel
	exchange string
	logger   *zap.Logger
	now      func() time.Time
}

// NewAMQPPublisher connects to RabbitMQ and declares the durable topic exchange.
func NewAMQPPublisher(url, exchange string, logger *zap.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn

	logger.Info("RabbitMQ publisher connected", zap.String("exchange", exchange))
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *zap.Logger) (*amqpPublisher, error) {
	err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	return &amqpPublisher{
		channel:  ch,
		exchange: exchange,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// PublishProductCreated sends a persistent JSON message keyed product.created
func (p *amqpPublisher) PublishProductCreated(ctx context.Context, product domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event := ProductCreated{
		EventID:    uuid.NewString(),
		OccurredAt: p.now().UTC(),
		Product:    product,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		RoutingKeyProductCreated,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish product event: %w", err)
	}

	p.logger.Debug("Published product event",
		zap.String("event_id", event.EventID),
		zap.Int("product_id", product.ID),
	)
	return nil
}

func (p *amqpPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ publisher: %v", errs)
	}
	return nil
}

// NopPublisher drops every event. It is used when RABBITMQ_URL is unset.
type NopPublisher struct{}

func (NopPublisher) PublishProductCreated(context.Context, domain.Product) error { return nil }

func (NopPublisher) Close() error { return nil }
