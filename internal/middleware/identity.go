package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/model"
)

// UserID returns the authenticated user id stored by SessionAuth.
func UserID(c echo.Context) (uint64, bool) {
	uid, ok := c.Get(CtxUserID).(uint64)
	return uid, ok && uid != 0
}

// Profile returns the acting profile stored by RequireProfile.
func Profile(c echo.Context) (*model.Profile, bool) {
	p, ok := c.Get(CtxProfile).(*model.Profile)
	return p, ok && p != nil
}

// userKey identifies the caller for rate limiting; "anon" without a session.
func userKey(c echo.Context) string {
	if uid, ok := UserID(c); ok {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
