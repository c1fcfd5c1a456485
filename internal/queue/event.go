// Package queue defines the listing events exchanged over RabbitMQ and
// the publisher and consumer that move them.
package queue

// Movie event types.
const (
	MovieCreated = "movie.created"
	MovieUpdated = "movie.updated"
	MovieDeleted = "movie.deleted"
)

// MovieEventsQueue is the durable queue listing events are routed to.
const MovieEventsQueue = "movie.events"

// MovieEvent is published after a movie listing is created, edited or
// removed.  It carries enough for downstream consumers to log the change
// and invalidate cached pages without querying the primary database.
type MovieEvent struct {
	Type       string  `json:"type"`
	MovieID    uint64  `json:"movie_id"`
	OwnerID    uint64  `json:"owner_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	Price      float64 `json:"price,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
