package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

// ProfileHandler serves the signed-in user's own profile pages.
type ProfileHandler struct {
	Profiles *service.ProfileStore
	Movies   *service.MovieStore
}

func NewProfileHandler(profiles *service.ProfileStore, movies *service.MovieStore) *ProfileHandler {
	if profiles == nil || movies == nil {
		panic("nil store passed to NewProfileHandler")
	}
	return &ProfileHandler{Profiles: profiles, Movies: movies}
}

// View shows the profile and its movies.  Viewing counts as activity, so
// last_active is refreshed first.
func (h *ProfileHandler) View(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Profiles.UpdateActivity(ctx, p); err != nil {
		return err
	}
	movies, err := h.Movies.ListByOwner(ctx, p)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.ProfileDetail, view.Page{
		Title:    "My profile",
		SignedIn: true,
		Profile:  p,
		Movies:   movies,
	})
}

// UpdateForm renders the profile form pre-filled with the stored values.
func (h *ProfileHandler) UpdateForm(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	return renderForm(c, http.StatusOK, view.ProfileUpdate, view.Page{Title: "Edit profile", Profile: p},
		form.ProfileFields, view.ProfileValues(p), nil)
}

// Update stores the submitted profile fields.
func (h *ProfileHandler) Update(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	in := service.ProfileInput{
		Name:        c.FormValue("name"),
		PhoneNumber: c.FormValue("phone_number"),
		City:        c.FormValue("city"),
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Profiles.UpdateFields(ctx, p, in); err != nil {
		if errs, ok := validationErrors(err); ok {
			values := form.Collect(form.ProfileFields, c.FormValue)
			return renderForm(c, http.StatusUnprocessableEntity, view.ProfileUpdate,
				view.Page{Title: "Edit profile", Profile: p}, form.ProfileFields, values, errs)
		}
		return err
	}
	return seeOther(c, ProfileURL)
}
