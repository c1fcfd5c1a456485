package model

import "time"

// Profile is the rental identity bound one-to-one to a user.  The
// primary key of the `profiles` table is the user id itself, so a user
// can never own more than one profile.
//
// Fields:
//	UserID      – users.id, also the profile primary key.
//	Name        – display name, required once the profile is edited.
//	PhoneNumber – optional E.164 phone number.
//	City        – city the movies are rented out from.
//	CreatedAt   – set once on insert.
//	UpdatedAt   – refreshed whenever an editable field changes.
//	LastActive  – refreshed only by the activity tracker.
type Profile struct {
	UserID      uint64    `json:"user_id"`      // profiles.user_id
	Name        string    `json:"name"`         // profiles.name
	PhoneNumber string    `json:"phone_number"` // profiles.phone_number
	City        string    `json:"city"`         // profiles.city
	CreatedAt   time.Time `json:"created_at"`   // profiles.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // profiles.updated_at
	LastActive  time.Time `json:"last_active"`  // profiles.last_active
}

// String returns the display name, mirroring how profiles are shown
// next to the movies they own.
func (p *Profile) String() string { return p.Name }
