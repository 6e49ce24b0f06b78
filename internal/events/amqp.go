package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const dialTimeout = 3 * time.Second

// AMQPPublisher publishes to RabbitMQ, dialing per publish. Decisions are
// rare admin actions, so a long-lived connection is not worth its upkeep.
type AMQPPublisher struct {
	url string
}

var _ Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher creates a publisher for the broker at url.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// PublishCertificationDecided sends event as a persistent JSON message.
func (p *AMQPPublisher) PublishCertificationDecided(ctx context.Context, event CertificationDecided) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		"",                        // default exchange
		CertificationDecidedQueue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Handler processes one decoded event. A returned error rejects the message
// without requeueing it.
type Handler func(ctx context.Context, event CertificationDecided) error

// Consume reads certification events until ctx is cancelled, reconnecting
// with capped exponential backoff when the broker goes away.
func Consume(ctx context.Context, url string, log *zap.Logger, handle Handler) error {
	backoff := time.Second
	for {
		conn, err := dial(url)
		if err != nil {
			log.Warn("broker dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, log, handle)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, log *zap.Logger, handle Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Warn("set qos failed", zap.Error(err))
	}
	if err := declare(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(CertificationDecidedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := Dispatch(ctx, d.Body, handle); err != nil {
				log.Error("handle certification event", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Dispatch decodes body and passes it to handle.
func Dispatch(ctx context.Context, body []byte, handle Handler) error {
	var ev CertificationDecided
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.FarmerID == "" || !ev.Status.Valid() {
		return errors.New("incomplete certification event")
	}
	return handle(ctx, ev)
}

func dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	return conn, nil
}

func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(CertificationDecidedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
