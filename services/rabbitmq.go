package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const PostEventsExchange = "post_events"

// RabbitPublisher публикует события ленты в topic exchange с ключом user.<id>
type RabbitPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewRabbitPublisher подключается к брокеру и объявляет exchange
func NewRabbitPublisher(url string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		PostEventsExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	log.Printf("RabbitMQ initialized, exchange %s", PostEventsExchange)
	return &RabbitPublisher{conn: conn, channel: channel}, nil
}

func RoutingKey(userID int64) string {
	return fmt.Sprintf("user.%d", userID)
}

func (p *RabbitPublisher) Publish(ctx context.Context, event PostEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.channel.PublishWithContext(ctx,
		PostEventsExchange,
		RoutingKey(event.RecipientID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Consume читает события в собственную эксклюзивную очередь экземпляра
// и передает их notifier в локальные websocket-соединения
func (p *RabbitPublisher) Consume(ctx context.Context, notifier *FeedNotifier) error {
	q, err := p.channel.QueueDeclare(
		"",
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := p.channel.QueueBind(q.Name, "user.*", PostEventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := p.channel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("ERROR: RabbitMQ consumer channel closed")
					return
				}
				var event PostEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					log.Println("ERROR: Failed to unmarshal post event:", err)
					continue
				}
				notifier.Deliver(event)
			}
		}
	}()
	return nil
}

func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
