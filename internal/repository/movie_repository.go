// Package repository contains data access logic separated from HTTP handlers.
// This file holds the movie listing queries: owner-scoped writes, lookups
// and the two public listing modes (oldest first and name search).
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/movie-rentals/internal/model"
)

// MovieRepo encapsulates all database queries related to movies.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = "id, owner_id, name, price, category, description, is_available, created_at, updated_at"

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Price, &m.Category, &m.Description,
		&m.IsAvailable, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MovieRepo) list(ctx context.Context, q string, args ...any) ([]*model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new movie.  On success the ID and timestamps of m are
// populated from the stored row.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (owner_id, name, price, category, description, is_available)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.OwnerID, m.Name, m.Price, m.Category, m.Description, m.IsAvailable)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *stored
	return nil
}

// GetByID fetches a movie regardless of owner.  It returns
// ErrMovieNotFound if no row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = "SELECT " + movieColumns + " FROM movies WHERE id = ?"
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return m, nil
}

// Update writes the editable fields of m if it belongs to m.OwnerID.  The
// owner itself is never changed.  ErrMovieNotFound is returned when no row
// matched.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies
	           SET name = ?, price = ?, category = ?, description = ?, is_available = ?, updated_at = ?
	           WHERE id = ? AND owner_id = ?`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, q, m.Name, m.Price, m.Category, m.Description, m.IsAvailable, now, m.ID, m.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	m.UpdatedAt = now
	return nil
}

// DeleteByIDAndOwner removes a movie owned by ownerID.
func (r *MovieRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// ListByOwner returns all movies of one owner in insertion order.
func (r *MovieRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies WHERE owner_id = ? ORDER BY id", ownerID)
}

// ListOldest returns the first limit movies ordered by creation time.
func (r *MovieRepo) ListOldest(ctx context.Context, limit int) ([]*model.Movie, error) {
	return r.list(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY created_at ASC, id ASC LIMIT ?", limit)
}

// SearchByName returns every movie whose name contains query, ignoring
// case.  LIKE wildcards in the query are escaped so it matches literally.
func (r *MovieRepo) SearchByName(ctx context.Context, query string) ([]*model.Movie, error) {
	const q = "SELECT " + movieColumns + ` FROM movies WHERE LOWER(name) LIKE ? ESCAPE '\\' ORDER BY id`
	return r.list(ctx, q, "%"+escapeLike(strings.ToLower(query))+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
