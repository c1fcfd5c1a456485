package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/model"
)

// ProfileProvisioner returns the profile of a user, creating it when absent.
type ProfileProvisioner interface {
	CreateIfAbsent(ctx context.Context, userID uint64) (*model.Profile, bool, error)
}

// RequireProfile loads the acting profile for an authenticated request.  A
// user without one gets an empty profile and is redirected to updateURL to
// fill it in.  Must run after SessionAuth.
func RequireProfile(profiles ProfileProvisioner, updateURL string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok {
				return echo.ErrUnauthorized
			}
			p, created, err := profiles.CreateIfAbsent(c.Request().Context(), uid)
			if err != nil {
				return err
			}
			if created {
				return c.Redirect(http.StatusFound, updateURL)
			}
			c.Set(CtxProfile, p)
			return next(c)
		}
	}
}
