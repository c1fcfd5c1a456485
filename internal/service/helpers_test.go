package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rentals/internal/logger"
	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/queue"
	"github.com/iliyamo/movie-rentals/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.MovieEvent
	err    error
}

func (p *recordingPublisher) PublishMovieEvent(_ context.Context, ev queue.MovieEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingInvalidator) InvalidatePages(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func (c *countingInvalidator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// tickingClock advances one second per call so creation order is strict.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type storeFixtures struct {
	db       *memory.DB
	profiles *ProfileStore
	movies   *MovieStore
	events   *recordingPublisher
}

func newStores(t *testing.T) storeFixtures {
	t.Helper()
	db := memory.New()
	db.SetClock(tickingClock())
	events := &recordingPublisher{}
	log := logger.Discard()
	return storeFixtures{
		db:       db,
		profiles: NewProfileStore(db.Profiles, log),
		movies:   NewMovieStore(db.Movies, events, log),
		events:   events,
	}
}

func (fx storeFixtures) profile(t *testing.T, email string) *model.Profile {
	t.Helper()
	uid, err := fx.db.Users.Create(context.Background(), email, "hash")
	require.NoError(t, err)
	p, _, err := fx.profiles.CreateIfAbsent(context.Background(), uid)
	require.NoError(t, err)
	return p
}

var errBroker = errors.New("broker down")
