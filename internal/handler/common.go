package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/middleware"
	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

// Redirect targets.
const (
	ProfileURL       = "/profile"
	ProfileUpdateURL = "/profile/update"
	AfterLoginURL    = "/profile/after_login"
)

// dbTimeout bounds the store calls made by one request.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID returns the authenticated user id stored by SessionAuth.
func getUserID(c echo.Context) (uint64, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.ErrUnauthorized
	}
	return uid, nil
}

// currentProfile returns the acting profile stored by RequireProfile.
func currentProfile(c echo.Context) (*model.Profile, error) {
	p, ok := middleware.Profile(c)
	if !ok {
		return nil, errors.New("no profile in request context")
	}
	return p, nil
}

// movieID parses the :id path parameter.  A malformed id is reported as
// not found.
func movieID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return id, nil
}

// signedIn reports whether the request carries a session cookie.  Public
// pages only use it to pick navigation links.
func signedIn(c echo.Context) bool {
	if _, ok := middleware.UserID(c); ok {
		return true
	}
	return middleware.SessionToken(c) != ""
}

// validationErrors extracts the field errors of a *service.ValidationError.
func validationErrors(err error) (form.Errors, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

// renderForm renders page with the submitted values and their errors.
func renderForm(c echo.Context, status int, page string, data view.Page, fields []form.Field, values map[string]string, errs form.Errors) error {
	data.SignedIn = true
	data.Fields = view.Fields(fields, values, errs)
	data.Errors = errs
	return c.Render(status, page, data)
}

func seeOther(c echo.Context, url string) error {
	return c.Redirect(http.StatusSeeOther, url)
}
