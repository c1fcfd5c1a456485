// Package router registers the HTTP routes and their middleware.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rentals/internal/handler"
	"github.com/iliyamo/movie-rentals/internal/middleware"
)

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAccounts registers login and sign-up.  limit guards the form
// posts against credential stuffing.
func RegisterAccounts(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/accounts")
	g.GET("/login", a.LoginForm)
	g.POST("/login", a.Login, limit)
	g.GET("/signup", a.SignupForm)
	g.POST("/signup", a.Signup, limit)
}

// RegisterProfile registers the signed-in area under /profile.
// after_login and logout only need a session; everything else also needs
// the acting profile, which is created on first visit.
func RegisterProfile(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, m *handler.MovieHandler,
	auth middleware.Authenticator, profiles middleware.ProfileProvisioner, loginURL string, log *slog.Logger) {
	session := middleware.SessionAuth(auth, loginURL, log)

	e.GET("/profile/after_login", a.AfterLogin, session)
	e.GET("/profile/logout", a.Logout, session)

	g := e.Group("/profile", session, middleware.RequireProfile(profiles, handler.ProfileUpdateURL))
	g.GET("", p.View)
	g.GET("/update", p.UpdateForm)
	g.POST("/update", p.Update)

	g.GET("/movie/create", m.CreateForm)
	g.POST("/movie/create", m.Create)
	g.GET("/movie/:id/update", m.UpdateForm)
	g.POST("/movie/:id/update", m.Update)
	g.GET("/movie/:id/delete", m.DeleteForm)
	g.POST("/movie/:id/delete", m.Delete)
	g.GET("/movie/:id", m.Detail)
}

// RegisterPublic registers the search page and public movie detail.
// cache serves repeated anonymous requests from Redis.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/", p.Search, cache)
	e.GET("/movie/:id", p.Detail, cache)
}
