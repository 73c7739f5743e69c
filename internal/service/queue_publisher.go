// Package service holds outbound integrations used by the handlers.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/recipe-sharing-api/internal/queue"
)

// Publisher sends activity events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// NewPublisher returns an AMQP publisher, or a no-op one when url is empty.
func NewPublisher(url, queueName string, log zerolog.Logger) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{url: url, queue: queueName, log: log, dialTimeout: 2 * time.Second}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ActivityEvent) error { return nil }

// AMQPPublisher dials per publish; events are rare enough that a pooled
// connection is not worth the reconnect handling.
type AMQPPublisher struct {
	url         string
	queue       string
	log         zerolog.Logger
	dialTimeout time.Duration
}

// Publish declares the durable queue and sends ev as a persistent JSON
// message.  Errors are logged and returned; callers may ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.dialTimeout)})
	if err != nil {
		p.log.Warn().Err(err).Str("type", ev.Type).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", p.queue).Msg("rabbitmq: queue declare failed")
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("type", ev.Type).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
