package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

const (
	notFoundMessage = "The page you requested could not be found."
	serverMessage   = "Something went wrong on our side. Please try again later."
)

// ErrorHandler maps handler errors to HTML error pages.  Missing and
// foreign records both produce the same 404 page.  Unexpected errors are
// logged and shown as a generic 500.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := http.StatusInternalServerError, serverMessage
		var he *echo.HTTPError
		switch {
		case errors.Is(err, service.ErrNotFound):
			status, msg = http.StatusNotFound, notFoundMessage
		case errors.As(err, &he):
			status = he.Code
			switch {
			case status == http.StatusNotFound:
				msg = notFoundMessage
			case status >= http.StatusInternalServerError:
				msg = serverMessage
			default:
				msg = fmt.Sprint(he.Message)
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		page := view.Page{Title: http.StatusText(status), SignedIn: signedIn(c), Status: status, Message: msg}
		if rerr := c.Render(status, view.Error, page); rerr != nil {
			log.Error("render error page", "error", rerr)
			_ = c.String(status, msg)
		}
	}
}
