package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

// PublicHandler serves the pages anyone can see.
type PublicHandler struct {
	Movies *service.MovieStore
}

func NewPublicHandler(movies *service.MovieStore) *PublicHandler {
	if movies == nil {
		panic("nil store passed to NewPublicHandler")
	}
	return &PublicHandler{Movies: movies}
}

// Search lists movies whose name contains ?search, or the oldest listings
// when the query is empty.
func (h *PublicHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("search"))
	ctx, cancel := dbCtx(c)
	defer cancel()

	movies, err := h.Movies.Search(ctx, q)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.Index, view.Page{Title: "Home", SignedIn: signedIn(c), Query: q, Movies: movies})
}

// Detail shows one movie without requiring a session.
func (h *PublicHandler) Detail(c echo.Context) error {
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
	return c.Render(http.StatusOK, view.MovieDetail, view.Page{Title: m.Name, SignedIn: signedIn(c), Movie: m})
}
