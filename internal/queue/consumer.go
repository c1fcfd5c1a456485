package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded listing event.
type Handler func(ctx context.Context, ev MovieEvent) error

// Consumer reads listing events from movie.events and hands each to a
// Handler, reconnecting with backoff whenever the broker goes away.
type Consumer struct {
	url     string
	handle  Handler
	log     *slog.Logger
	backoff time.Duration
}

func NewConsumer(url string, handle Handler, log *slog.Logger) *Consumer {
	return &Consumer{url: url, handle: handle, log: log, backoff: time.Second}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	backoff := c.backoff
	for ctx.Err() == nil {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("movie-consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = c.backoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("movie-consumer: consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "channel open")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("movie-consumer: set QoS failed", "error", err)
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(MovieEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "queue consume")
	}
	c.log.Info("movie-consumer: consuming", "queue", MovieEventsQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Deliver(ctx, d.Body); err != nil {
				c.log.Error("movie-consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // no requeue, avoids tight redelivery loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Deliver decodes body and runs the handler on it.
func (c *Consumer) Deliver(ctx context.Context, body []byte) error {
	var ev MovieEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal movie event")
	}
	if ev.Type == "" || ev.MovieID == 0 {
		return errors.Errorf("malformed movie event %q", body)
	}
	c.log.Info("movie event",
		"type", ev.Type,
		"movie_id", ev.MovieID,
		"owner_id", ev.OwnerID,
		"name", ev.Name,
		"category", ev.Category,
		"price", ev.Price,
		"occurred_at", ev.OccurredAt,
	)
	if c.handle == nil {
		return nil
	}
	return c.handle(ctx, ev)
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
