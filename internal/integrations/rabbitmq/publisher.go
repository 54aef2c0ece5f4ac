// Package rabbitmq publishes outbox notifications to a topic exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message сообщение для публикации
// MessageID используется брокером и потребителями для дедупликации
type Message struct {
	MessageID  string
	RoutingKey string
	Body       []byte
	Timestamp  time.Time
}

// Publisher публикует сообщения в exchange с подтверждениями от брокера
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial подключается к брокеру и создает Publisher
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	p, err := NewPublisher(conn, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return p, nil
}

// NewPublisher открывает канал, объявляет durable topic exchange и включает confirm mode
func NewPublisher(conn *amqp.Connection, exchange string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrDeclare, exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%w: enable confirms: %v", ErrConnect, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish публикует persistent JSON сообщение и ждёт подтверждения брокера
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	confirmation, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, msg.RoutingKey, false, false, amqp.Publishing{
		MessageId:    msg.MessageID,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.Timestamp,
		Body:         msg.Body,
	})
	if err != nil {
		return fmt.Errorf("%w: message=%s: %v", ErrPublish, msg.MessageID, err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: message=%s: %v", ErrPublish, msg.MessageID, err)
	}
	if !acked {
		return fmt.Errorf("%w: message=%s", ErrNotConfirmed, msg.MessageID)
	}

	return nil
}

// Close закрывает канал и соединение
func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
