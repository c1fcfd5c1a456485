package model

import "time"

// User represents an account record as stored in the `users` table.
// Accounts are the identity that profiles hang off; deleting a user
// cascades to its profile and, through the profile, to every movie
// the profile owns.
//
// Fields:
//	ID           – primary key identifier of the user.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	IsActive     – whether the account may log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Session models an entry in the `sessions` table.  A session is
// created at login and identified by the SHA‑256 hash of the JWT id
// embedded in the session cookie.  Logging out sets RevokedAt.
//
// Fields:
//	ID        – primary key identifier.
//	UserID    – owner of the session.
//	TokenHash – SHA‑256 hex digest of the token id.
//	ExpiresAt – expiration timestamp.
//	RevokedAt – when the session was revoked (nil while active).
//	CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64     // sessions.id
	UserID    uint64     // sessions.user_id
	TokenHash string     // sessions.token_hash
	ExpiresAt time.Time  // sessions.expires_at
	RevokedAt *time.Time // sessions.revoked_at (nullable)
	CreatedAt time.Time  // sessions.created_at
}
