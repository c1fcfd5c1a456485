package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/repository"
)

// ProfileRepository is the persistence the ProfileStore needs.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error)
	Insert(ctx context.Context, p *model.Profile) error
	UpdateLastActive(ctx context.Context, userID uint64, at time.Time) error
	UpdateFields(ctx context.Context, p *model.Profile) error
}

// ProfileInput holds the editable profile fields as submitted.
type ProfileInput struct {
	Name        string
	PhoneNumber string
	City        string
}

func (in ProfileInput) values() map[string]string {
	return map[string]string{"name": in.Name, "phone_number": in.PhoneNumber, "city": in.City}
}

// ProfileStore owns profile records.
type ProfileStore struct {
	repo ProfileRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewProfileStore(repo ProfileRepository, log *slog.Logger) *ProfileStore {
	return &ProfileStore{repo: repo, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// GetByUserIdentity returns the profile of a user or ErrNotFound.
func (s *ProfileStore) GetByUserIdentity(ctx context.Context, userID uint64) (*model.Profile, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load profile")
	}
	return p, nil
}

// CreateIfAbsent returns the user's profile, creating an empty one with a
// fresh activity timestamp when none exists.  created reports whether a
// new profile was stored.  Two concurrent first logins both end up with
// the single stored row.
func (s *ProfileStore) CreateIfAbsent(ctx context.Context, userID uint64) (p *model.Profile, created bool, err error) {
	p, err = s.GetByUserIdentity(ctx, userID)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	p = &model.Profile{UserID: userID, LastActive: s.now()}
	if err := s.repo.Insert(ctx, p); err != nil {
		if errors.Is(err, repository.ErrProfileExists) {
			p, err = s.GetByUserIdentity(ctx, userID)
			return p, false, err
		}
		return nil, false, errors.Wrap(err, "insert profile")
	}
	s.log.Info("profile created", "user_id", userID, "last_active", p.LastActive)
	return p, true, nil
}

// UpdateActivity moves last_active to now.  The timestamp never moves
// backwards, so repeated calls are harmless.
func (s *ProfileStore) UpdateActivity(ctx context.Context, p *model.Profile) error {
	at := s.now()
	if at.Before(p.LastActive) {
		at = p.LastActive
	}
	if err := s.repo.UpdateLastActive(ctx, p.UserID, at); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "update last_active")
	}
	p.LastActive = at
	s.log.Info("profile activity updated", "user_id", p.UserID, "last_active", at)
	return nil
}

// UpdateFields validates in and stores it on p.  On a *ValidationError
// neither p nor the stored profile is changed.
func (s *ProfileStore) UpdateFields(ctx context.Context, p *model.Profile, in ProfileInput) error {
	values := in.values()
	if err := invalid(form.Validate(form.ProfileFields, values)); err != nil {
		return err
	}
	next := *p
	next.Name = values["name"]
	next.PhoneNumber = values["phone_number"]
	next.City = values["city"]
	if err := s.repo.UpdateFields(ctx, &next); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "update profile")
	}
	*p = next
	s.log.Info("profile updated", "user_id", p.UserID)
	return nil
}
