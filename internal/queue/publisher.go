package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends listing events to the movie.events queue.  The broker
// connection is opened on first use and dropped after any failure so the
// next publish redials.
type Publisher struct {
	url string
	log *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a publisher for the broker at url.  No connection is
// made until the first event.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishMovieEvent marshals ev and publishes it as a persistent message.
func (p *Publisher) PublishMovieEvent(ctx context.Context, ev MovieEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal movie event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", MovieEventsQueue, false, false, pub); err != nil {
		p.reset()
		return errors.Wrap(err, "publish movie event")
	}
	p.log.Debug("movie event published", "type", ev.Type, "movie_id", ev.MovieID)
	return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// channel returns the open channel, dialing when needed.  p.mu must be held.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, errors.Wrap(err, "rabbitmq dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "rabbitmq channel")
	}
	if err := declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	p.log.Info("rabbitmq publisher connected", "queue", MovieEventsQueue)
	return ch, nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// declare makes sure the durable events queue exists.  Idempotent.
func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		MovieEventsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	return errors.Wrap(err, "rabbitmq queue declare")
}
