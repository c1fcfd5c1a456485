package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

// MovieHandler serves the owner's movie pages under /profile/movie.
// Requests for a movie the acting profile does not own fail with the
// same 404 as a missing one.
type MovieHandler struct {
	Movies *service.MovieStore
}

func NewMovieHandler(movies *service.MovieStore) *MovieHandler {
	if movies == nil {
		panic("nil store passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies}
}

func movieInput(c echo.Context) service.MovieInput {
	return service.MovieInput{
		Name:        c.FormValue("name"),
		Category:    c.FormValue("category"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
	}
}

func (h *MovieHandler) CreateForm(c echo.Context) error {
	return renderForm(c, http.StatusOK, view.MovieCreate, view.Page{Title: "Add a movie"}, form.MovieFields, nil, nil)
}

// Create lists a new movie owned by the acting profile.  Any owner value
// in the form is ignored.
func (h *MovieHandler) Create(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Movies.Create(ctx, p, movieInput(c)); err != nil {
		if errs, ok := validationErrors(err); ok {
			return renderForm(c, http.StatusUnprocessableEntity, view.MovieCreate, view.Page{Title: "Add a movie"},
				form.MovieFields, form.Collect(form.MovieFields, c.FormValue), errs)
		}
		return err
	}
	return seeOther(c, ProfileURL)
}

func (h *MovieHandler) UpdateForm(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := movieID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	m, err := h.Movies.GetOwned(ctx, id, p)
	if err != nil {
		return err
	}
	return renderForm(c, http.StatusOK, view.MovieUpdate, view.Page{Title: "Edit " + m.Name, Movie: m},
		form.MovieFields, view.MovieValues(m), nil)
}

func (h *MovieHandler) Update(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := movieID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	m, err := h.Movies.GetOwned(ctx, id, p)
	if err != nil {
		return err
	}
	if _, err := h.Movies.Update(ctx, id, p, movieInput(c)); err != nil {
		if errs, ok := validationErrors(err); ok {
			return renderForm(c, http.StatusUnprocessableEntity, view.MovieUpdate, view.Page{Title: "Edit " + m.Name, Movie: m},
				form.MovieFields, form.Collect(form.MovieFields, c.FormValue), errs)
		}
		return err
	}
	return seeOther(c, ProfileURL)
}

// DeleteForm asks for confirmation before deleting.
func (h *MovieHandler) DeleteForm(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := movieID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	m, err := h.Movies.GetOwned(ctx, id, p)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.MovieDelete, view.Page{Title: "Delete " + m.Name, SignedIn: true, Movie: m})
}

func (h *MovieHandler) Delete(c echo.Context) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := movieID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, id, p); err != nil {
		return err
	}
	return seeOther(c, ProfileURL)
}

// Detail shows any movie to a signed-in user.  Ownership is not checked.
func (h *MovieHandler) Detail(c echo.Context) error {
	id, err := movieID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.MovieDetail, view.Page{Title: m.Name, SignedIn: true, Movie: m})
}
