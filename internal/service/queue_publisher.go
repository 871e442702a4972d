// Package service holds the request-independent business steps: the
// credential and session lifecycle, rating aggregation and outbound mail.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/queue"
)

// Mailer delivers an outbound email. *QueuePublisher hands it to the
// broker; *queue.SMTPSender sends it directly.
type Mailer interface {
	Send(ctx context.Context, msg queue.EmailMessage) error
}

// QueuePublisher publishes emails to the durable email queue. Each call
// opens its own connection.
type QueuePublisher struct {
	url string
	log *zap.Logger
}

func NewQueuePublisher(url string, log *zap.Logger) *QueuePublisher {
	return &QueuePublisher{url: url, log: log}
}

// Send publishes msg as a persistent JSON message. Errors are logged and
// returned so the caller can roll back.
func (p *QueuePublisher) Send(ctx context.Context, msg queue.EmailMessage) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.EmailQueueName, // name
		true,                 // durable
		false,                // autoDelete
		false,                // exclusive
		false,                // noWait
		nil,                  // args
	); err != nil {
		p.log.Error("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                   // default exchange
		queue.EmailQueueName, // routing key = queue name
		false,                // mandatory
		false,                // immediate
		pub,
	); err != nil {
		p.log.Error("rabbitmq: publish failed", zap.Error(err), zap.String("to", msg.To))
		return err
	}
	return nil
}
