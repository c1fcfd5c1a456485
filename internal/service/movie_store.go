package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/queue"
	"github.com/iliyamo/movie-rentals/internal/repository"
)

// SearchLimit caps the listing shown when no search query is given.
const SearchLimit = 10

// MovieRepository is the persistence the MovieStore needs.
type MovieRepository interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Movie, error)
	ListOldest(ctx context.Context, limit int) ([]*model.Movie, error)
	SearchByName(ctx context.Context, query string) ([]*model.Movie, error)
}

// EventPublisher delivers listing events.  A nil EventPublisher disables
// publishing.
type EventPublisher interface {
	PublishMovieEvent(ctx context.Context, ev queue.MovieEvent) error
}

// PageInvalidator drops cached public pages after a listing changes.
type PageInvalidator interface {
	InvalidatePages(ctx context.Context) error
}

// MovieInput holds the editable movie fields as submitted.  There is no
// owner field: the owner always comes from the acting profile.
type MovieInput struct {
	Name        string
	Category    string
	Description string
	Price       string
}

func (in MovieInput) values() map[string]string {
	return map[string]string{
		"name":        in.Name,
		"category":    in.Category,
		"description": in.Description,
		"price":       in.Price,
	}
}

// apply validates in and copies it onto m.
func (in MovieInput) apply(m *model.Movie) error {
	values := in.values()
	if err := invalid(form.Validate(form.MovieFields, values)); err != nil {
		return err
	}
	price, err := form.ParsePrice(values["price"])
	if err != nil {
		return invalid(form.Errors{"price": "Enter a number greater than or equal to 0."})
	}
	m.Name = values["name"]
	m.Category = values["category"]
	m.Description = values["description"]
	m.Price = price
	return nil
}

// MovieStore owns movie listings.
type MovieStore struct {
	repo   MovieRepository
	events EventPublisher
	pages  PageInvalidator
	log    *slog.Logger
}

func NewMovieStore(repo MovieRepository, events EventPublisher, log *slog.Logger) *MovieStore {
	return &MovieStore{repo: repo, events: events, log: log}
}

// SetPageInvalidator makes every successful mutation clear the public page
// cache before returning.
func (s *MovieStore) SetPageInvalidator(p PageInvalidator) {
	s.pages = p
}

// GetByID returns a movie or ErrNotFound.
func (s *MovieStore) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load movie")
	}
	return m, nil
}

// GetOwned returns a movie only when acting owns it.
func (s *MovieStore) GetOwned(ctx context.Context, id uint64, acting *model.Profile) (*model.Movie, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AssertOwner(m, acting); err != nil {
		return nil, err
	}
	return m, nil
}

// Create stores a new available movie owned by owner.
func (s *MovieStore) Create(ctx context.Context, owner *model.Profile, in MovieInput) (*model.Movie, error) {
	m := &model.Movie{OwnerID: owner.UserID, IsAvailable: true}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, errors.Wrap(err, "create movie")
	}
	s.log.Info("movie created", "movie_id", m.ID, "owner_id", m.OwnerID)
	s.invalidate(ctx)
	s.publish(ctx, queue.MovieCreated, m)
	return m, nil
}

// Update edits a movie owned by acting.  The owner is verified, never
// reassigned.
func (s *MovieStore) Update(ctx context.Context, id uint64, acting *model.Profile, in MovieInput) (*model.Movie, error) {
	m, err := s.GetOwned(ctx, id, acting)
	if err != nil {
		return nil, err
	}
	next := *m
	if err := in.apply(&next); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "update movie")
	}
	s.log.Info("movie updated", "movie_id", next.ID, "owner_id", next.OwnerID)
	s.invalidate(ctx)
	s.publish(ctx, queue.MovieUpdated, &next)
	return &next, nil
}

// Delete removes a movie owned by acting.
func (s *MovieStore) Delete(ctx context.Context, id uint64, acting *model.Profile) error {
	m, err := s.GetOwned(ctx, id, acting)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByIDAndOwner(ctx, m.ID, acting.UserID); err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "delete movie")
	}
	s.log.Info("movie deleted", "movie_id", m.ID, "owner_id", m.OwnerID)
	s.invalidate(ctx)
	s.publish(ctx, queue.MovieDeleted, m)
	return nil
}

// ListByOwner returns the movies of owner in insertion order.
func (s *MovieStore) ListByOwner(ctx context.Context, owner *model.Profile) ([]*model.Movie, error) {
	out, err := s.repo.ListByOwner(ctx, owner.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list movies by owner")
	}
	return out, nil
}

// Search returns the first SearchLimit movies by creation time when query
// is blank, otherwise every movie whose name contains query ignoring case.
func (s *MovieStore) Search(ctx context.Context, query string) ([]*model.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.log.Debug("search without query")
		out, err := s.repo.ListOldest(ctx, SearchLimit)
		return out, errors.Wrap(err, "list movies")
	}
	s.log.Debug("search", "query", query)
	out, err := s.repo.SearchByName(ctx, query)
	return out, errors.Wrap(err, "search movies")
}

// invalidate clears cached public pages so anonymous visitors never see a
// listing that has changed.  Failures are logged; entries still expire.
func (s *MovieStore) invalidate(ctx context.Context) {
	if s.pages == nil {
		return
	}
	if err := s.pages.InvalidatePages(ctx); err != nil {
		s.log.Warn("page cache invalidation failed", "error", err)
	}
}

// publish sends a listing event.  Failures are logged and never fail the
// mutation that triggered them.
func (s *MovieStore) publish(ctx context.Context, typ string, m *model.Movie) {
	if s.events == nil {
		return
	}
	ev := queue.MovieEvent{
		Type:       typ,
		MovieID:    m.ID,
		OwnerID:    m.OwnerID,
		Name:       m.Name,
		Category:   m.Category,
		Price:      m.Price,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishMovieEvent(ctx, ev); err != nil {
		s.log.Warn("publish movie event failed", "type", typ, "movie_id", m.ID, "error", err)
	}
}
