// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers to distinguish
// between a missing record, a uniqueness violation and a real database
// failure without inspecting driver errors.
package repository

import "errors"

// ErrProfileNotFound is returned when no profile exists for a user.
var ErrProfileNotFound = errors.New("profile not found")

// ErrProfileExists is returned by ProfileRepo.Insert when the user
// already has a profile.
var ErrProfileExists = errors.New("profile already exists")

// ErrMovieNotFound is returned when a movie id matches no row, or when a
// scoped update/delete matched no row owned by the caller.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when no account matches an email or id.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when signing up with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrSessionInvalid is returned for unknown, expired or revoked sessions.
var ErrSessionInvalid = errors.New("session invalid")
