// Package memory provides in-process implementations of the repositories.
// They back the server when STORE_DRIVER=memory and the store and handler
// tests.  Every method returns the same sentinel errors as the MySQL
// repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/repository"
)

// DB groups the in-memory tables.  Foreign keys cascade like the MySQL
// schema: deleting a user removes its sessions, profile and movies.
type DB struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[uint64]model.User
	sessions map[string]model.Session
	profiles map[uint64]model.Profile
	movies   map[uint64]model.Movie
	nextUser uint64
	nextMov  uint64

	Users    *Users
	Sessions *Sessions
	Profiles *Profiles
	Movies   *Movies
}

// New returns an empty database.
func New() *DB {
	db := &DB{
		now:      func() time.Time { return time.Now().UTC() },
		users:    map[uint64]model.User{},
		sessions: map[string]model.Session{},
		profiles: map[uint64]model.Profile{},
		movies:   map[uint64]model.Movie{},
	}
	db.Users = &Users{db}
	db.Sessions = &Sessions{db}
	db.Profiles = &Profiles{db}
	db.Movies = &Movies{db}
	return db
}

// SetClock replaces the clock used for database-assigned timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// DeleteUser removes a user and everything that references it.
func (db *DB) DeleteUser(_ context.Context, id uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(db.users, id)
	for h, s := range db.sessions {
		if s.UserID == id {
			delete(db.sessions, h)
		}
	}
	delete(db.profiles, id)
	for mid, m := range db.movies {
		if m.OwnerID == id {
			delete(db.movies, mid)
		}
	}
	return nil
}

// Users implements the account table.
type Users struct{ db *DB }

func (r *Users) Create(_ context.Context, email, passwordHash string) (uint64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.db.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	r.db.nextUser++
	now := r.db.now()
	r.db.users[r.db.nextUser] = model.User{
		ID: r.db.nextUser, Email: email, PasswordHash: passwordHash, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	return r.db.nextUser, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

// Sessions implements the session table.
type Sessions struct{ db *DB }

func (r *Sessions) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sessions[tokenHash] = model.Session{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp, CreatedAt: r.db.now()}
	return nil
}

func (r *Sessions) Validate(_ context.Context, tokenHash string) (uint64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.sessions[tokenHash]
	if !ok || s.RevokedAt != nil || r.db.now().After(s.ExpiresAt) {
		return 0, repository.ErrSessionInvalid
	}
	return s.UserID, nil
}

func (r *Sessions) Revoke(_ context.Context, tokenHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if s, ok := r.db.sessions[tokenHash]; ok && s.RevokedAt == nil {
		now := r.db.now()
		s.RevokedAt = &now
		r.db.sessions[tokenHash] = s
	}
	return nil
}

// Profiles implements the profile table.
type Profiles struct{ db *DB }

func (r *Profiles) GetByUserID(_ context.Context, userID uint64) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return &p, nil
}

func (r *Profiles) Insert(_ context.Context, p *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[p.UserID]; ok {
		return repository.ErrProfileExists
	}
	now := r.db.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.db.profiles[p.UserID] = *p
	return nil
}

func (r *Profiles) UpdateLastActive(_ context.Context, userID uint64, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.LastActive = at
	r.db.profiles[userID] = p
	return nil
}

func (r *Profiles) UpdateFields(_ context.Context, p *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.profiles[p.UserID]
	if !ok {
		return repository.ErrProfileNotFound
	}
	stored.Name, stored.PhoneNumber, stored.City = p.Name, p.PhoneNumber, p.City
	stored.UpdatedAt = r.db.now()
	r.db.profiles[p.UserID] = stored
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

// Count returns the number of stored profiles.
func (r *Profiles) Count() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.profiles)
}

// Movies implements the movie table.
type Movies struct{ db *DB }

func (r *Movies) Create(_ context.Context, m *model.Movie) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[m.OwnerID]; !ok {
		return repository.ErrProfileNotFound
	}
	r.db.nextMov++
	now := r.db.now()
	m.ID = r.db.nextMov
	m.CreatedAt, m.UpdatedAt = now, now
	r.db.movies[m.ID] = *m
	return nil
}

func (r *Movies) GetByID(_ context.Context, id uint64) (*model.Movie, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.movies[id]
	if !ok {
		return nil, repository.ErrMovieNotFound
	}
	return &m, nil
}

func (r *Movies) Update(_ context.Context, m *model.Movie) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.movies[m.ID]
	if !ok || stored.OwnerID != m.OwnerID {
		return repository.ErrMovieNotFound
	}
	stored.Name, stored.Price, stored.Category = m.Name, m.Price, m.Category
	stored.Description, stored.IsAvailable = m.Description, m.IsAvailable
	stored.UpdatedAt = r.db.now()
	r.db.movies[m.ID] = stored
	m.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *Movies) DeleteByIDAndOwner(_ context.Context, id, ownerID uint64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.movies[id]
	if !ok || stored.OwnerID != ownerID {
		return repository.ErrMovieNotFound
	}
	delete(r.db.movies, id)
	return nil
}

func (r *Movies) ListByOwner(_ context.Context, ownerID uint64) ([]*model.Movie, error) {
	return r.filter(func(m model.Movie) bool { return m.OwnerID == ownerID }, byID), nil
}

func (r *Movies) ListOldest(_ context.Context, limit int) ([]*model.Movie, error) {
	out := r.filter(func(model.Movie) bool { return true }, byCreated)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Movies) SearchByName(_ context.Context, query string) ([]*model.Movie, error) {
	q := strings.ToLower(query)
	return r.filter(func(m model.Movie) bool { return strings.Contains(strings.ToLower(m.Name), q) }, byID), nil
}

func byID(a, b *model.Movie) bool { return a.ID < b.ID }

func byCreated(a, b *model.Movie) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (r *Movies) filter(keep func(model.Movie) bool, less func(a, b *model.Movie) bool) []*model.Movie {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.Movie
	for _, m := range r.db.movies {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
