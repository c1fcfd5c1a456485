package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-rentals/internal/database"
	"github.com/iliyamo/movie-rentals/internal/model"
)

// ProfileRepo encapsulates all queries against the `profiles` table.
type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = "user_id, name, phone_number, city, created_at, updated_at, last_active"

func scanProfile(row interface{ Scan(...any) error }) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.Name, &p.PhoneNumber, &p.City, &p.CreatedAt, &p.UpdatedAt, &p.LastActive); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserID fetches the profile keyed by the user id or returns
// ErrProfileNotFound.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Profile, error) {
	const q = "SELECT " + profileColumns + " FROM profiles WHERE user_id = ?"
	p, err := scanProfile(r.db.QueryRowContext(ctx, q, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Insert stores a new profile.  The primary key is the user id, so a
// second insert for the same user fails with ErrProfileExists.  After
// the insert the row is re-read to pick up the database timestamps.
func (r *ProfileRepo) Insert(ctx context.Context, p *model.Profile) error {
	const q = `INSERT INTO profiles (user_id, name, phone_number, city, last_active)
	           VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, p.UserID, p.Name, p.PhoneNumber, p.City, p.LastActive); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrProfileExists
		}
		return err
	}
	stored, err := r.GetByUserID(ctx, p.UserID)
	if err != nil {
		return err
	}
	*p = *stored
	return nil
}

// UpdateLastActive sets last_active without touching updated_at.
func (r *ProfileRepo) UpdateLastActive(ctx context.Context, userID uint64, at time.Time) error {
	const q = "UPDATE profiles SET last_active = ? WHERE user_id = ?"
	res, err := r.db.ExecContext(ctx, q, at, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UpdateFields writes the editable fields and refreshes updated_at.  The
// new updated_at is written back into p.
func (r *ProfileRepo) UpdateFields(ctx context.Context, p *model.Profile) error {
	const q = `UPDATE profiles
	           SET name = ?, phone_number = ?, city = ?, updated_at = ?
	           WHERE user_id = ?`
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, q, p.Name, p.PhoneNumber, p.City, now, p.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	p.UpdatedAt = now
	return nil
}
