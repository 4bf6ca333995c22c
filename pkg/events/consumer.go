package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Handler processes one decoded event. A returned error rejects the message.
type Handler func(ctx context.Context, event *BookingEvent) error

const maxBackoff = 30 * time.Second

// Consume reads events from queue until ctx is cancelled, reconnecting with
// exponential backoff when the broker goes away.
func Consume(ctx context.Context, url, queue string, handler Handler, logger *logrus.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.WithError(err).WithField("retry_in", backoff.String()).Warn("Failed to dial broker")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queue, handler, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithError(err).Warn("Consume loop ended, reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, handler Handler, logger *logrus.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.WithError(err).Warn("Failed to set QoS")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
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
			if err := HandleDelivery(ctx, d.Body, handler); err != nil {
				logger.WithError(err).Error("Failed to handle booking event")
				_ = d.Nack(false, false) // reject, no requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleDelivery decodes a message body and passes it to handler
func HandleDelivery(ctx context.Context, body []byte, handler Handler) error {
	ev, err := Decode(body)
	if err != nil {
		return err
	}
	return handler(ctx, ev)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
