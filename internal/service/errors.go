// Package service holds the profile, movie and account stores that sit
// between the HTTP handlers and the repositories.
package service

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
)

// ErrNotFound is returned when a profile or movie does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotOwner is returned when the acting profile does not own a movie.
// It matches ErrNotFound so that callers report both the same way and
// never reveal that someone else's record exists.
var ErrNotOwner = fmt.Errorf("%w: not the owner", ErrNotFound)

// ErrInvalidCredentials is returned by Login for an unknown email, a
// wrong password or an inactive account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnauthenticated is returned when a session token is missing,
// malformed, expired or revoked.
var ErrUnauthenticated = errors.New("unauthenticated")

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields form.Errors
}

func (e *ValidationError) Error() string { return e.Fields.Error() }

func invalid(errs form.Errors) error {
	if errs == nil {
		return nil
	}
	return &ValidationError{Fields: errs}
}
