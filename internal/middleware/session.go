package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// Context keys set by SessionAuth and RequireProfile.
const (
	CtxUserID       = "user_id"
	CtxSessionToken = "session_token"
	CtxProfile      = "profile"
)

// Authenticator resolves a raw session token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (uint64, error)
}

// SessionAuth admits requests carrying a valid session, taken from the
// session cookie or a Bearer Authorization header.  Anyone else is sent to
// loginURL with the requested path in ?next=.  Rejected tokens are logged
// at debug level to log, or slog.Default when log is nil.
func SessionAuth(auth Authenticator, loginURL string, log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := SessionToken(c)
			if raw == "" {
				return redirectToLogin(c, loginURL)
			}
			uid, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				log.Debug("session rejected", "path", c.Request().URL.Path, "error", err)
				return redirectToLogin(c, loginURL)
			}
			c.Set(CtxUserID, uid)
			c.Set(CtxSessionToken, raw)
			return next(c)
		}
	}
}

// SessionToken returns the raw session token of the request, if any.
func SessionToken(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func redirectToLogin(c echo.Context, loginURL string) error {
	target := loginURL + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
	return c.Redirect(http.StatusFound, target)
}
