package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

const (
	exchangeName = "environments"
	queueName    = "environment.events"
	routingKey   = "lifecycle"
)

// EnvironmentEvent — сообщение о смене состояния окружения.
type EnvironmentEvent struct {
	EnvironmentID  string                   `json:"environmentId"`
	TenantID       string                   `json:"tenantId"`
	SubscriptionID string                   `json:"subscriptionId"`
	Status         models.EnvironmentStatus `json:"status"`
	OccurredAt     time.Time                `json:"occurredAt"`
}

// Publisher публикует события окружений в RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher открывает канал и объявляет exchange и очередь событий.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	const op = "rabbitmq.NewPublisher"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		exchangeName,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, queueName, err)
	}

	err = ch.QueueBind(
		queueName,
		routingKey,
		exchangeName,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, queueName, err)
	}

	return &Publisher{ch: ch}, nil
}

// Publish отправляет событие в очередь.
func (p *Publisher) Publish(event EnvironmentEvent) error {
	const op = "rabbitmq.Publish"
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = p.ch.Publish(
		exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
