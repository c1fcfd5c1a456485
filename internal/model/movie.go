package model

import "time"

// Movie is a listing for an item available for rental.  Each movie is
// owned by exactly one profile and is removed together with it.
//
// Fields:
//	ID          – primary key identifier.
//	OwnerID     – profiles.user_id of the owning profile.
//	Name        – title of the movie.
//	Price       – rental price.
//	Category    – free-text genre.
//	Description – long description shown on the detail page.
//	IsAvailable – whether the movie can currently be rented (defaults to true).
//	CreatedAt   – timestamp of creation.
//	UpdatedAt   – timestamp of last update.
type Movie struct {
	ID          uint64    `json:"id"`           // movies.id
	OwnerID     uint64    `json:"owner_id"`     // movies.owner_id
	Name        string    `json:"name"`         // movies.name
	Price       float64   `json:"price"`        // movies.price
	Category    string    `json:"category"`     // movies.category
	Description string    `json:"description"`  // movies.description
	IsAvailable bool      `json:"is_available"` // movies.is_available
	CreatedAt   time.Time `json:"created_at"`   // movies.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // movies.updated_at
}

func (m *Movie) String() string { return m.Name }
