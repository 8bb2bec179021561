package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/stockpilot/backend-go/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	DefaultExchange = "inventory.notifications"
	ExchangeType    = "topic"

	dialAttempts = 5
	dialBackoff  = 2 * time.Second
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type rabbitPublisher struct {
	ch       amqpChannel
	exchange string
}

// NewRabbitPublisher publishes notifications as JSON to a topic exchange with
// routing key notification.<type>.
func NewRabbitPublisher(ch amqpChannel, exchange string) Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &rabbitPublisher{ch: ch, exchange: exchange}
}

func (p *rabbitPublisher) Publish(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("could not marshal notification: %w", err)
	}

	return p.ch.PublishWithContext(ctx,
		p.exchange,    // exchange
		RoutingKey(n), // routing key
		false,         // mandatory
		false,         // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    n.ID,
			Timestamp:    n.CreatedAt,
			Body:         body,
		},
	)
}

func RoutingKey(n domain.Notification) string {
	return "notification." + string(n.Type)
}

// SetupConn dials the broker with a short retry loop and declares the
// exchange.
func SetupConn(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	var conn *amqp.Connection
	var err error

	for i := 0; i < dialAttempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("failed to connect to RabbitMQ")
		time.Sleep(dialBackoff)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return conn, ch, nil
}
