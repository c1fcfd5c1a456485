package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/config"
	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/middleware"
	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/utils"
	"github.com/iliyamo/movie-rentals/internal/view"
)

const badLoginMessage = "Please enter a correct email and password."

// AuthHandler serves sign-up, login, logout and the post-login redirect.
type AuthHandler struct {
	Cfg      config.Config
	Accounts *service.AccountService
	Profiles *service.ProfileStore
}

func NewAuthHandler(cfg config.Config, accounts *service.AccountService, profiles *service.ProfileStore) *AuthHandler {
	if accounts == nil || profiles == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Profiles: profiles}
}

// LoginForm renders the login page, remembering where to go afterwards.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.Login, view.Page{Title: "Log in", Next: safeNext(c.QueryParam("next"))})
}

// Login checks the credentials, sets the session cookie and redirects to
// ?next or the post-login page.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	next := safeNext(c.FormValue("next"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	tok, err := h.Accounts.Login(ctx, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Render(http.StatusUnprocessableEntity, view.Login, view.Page{
				Title:  "Log in",
				Email:  email,
				Next:   next,
				Errors: form.Errors{"": badLoginMessage},
			})
		}
		return err
	}
	h.setSession(c, tok)
	if next == "" {
		next = AfterLoginURL
	}
	return seeOther(c, next)
}

// SignupForm renders the sign-up page.
func (h *AuthHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.Signup, view.Page{Title: "Sign up"})
}

// Signup creates the account, logs it in and continues to the post-login
// page, which creates the profile.
func (h *AuthHandler) Signup(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))

	ctx, cancel := dbCtx(c)
	defer cancel()

	uid, err := h.Accounts.Signup(ctx, email, c.FormValue("password"))
	if err != nil {
		if errs, ok := validationErrors(err); ok {
			return c.Render(http.StatusUnprocessableEntity, view.Signup, view.Page{Title: "Sign up", Email: email, Errors: errs})
		}
		return err
	}
	tok, err := h.Accounts.OpenSession(ctx, uid)
	if err != nil {
		return err
	}
	h.setSession(c, tok)
	return seeOther(c, AfterLoginURL)
}

// AfterLogin makes sure the user has a profile.  New users are sent to
// fill it in, returning ones to their profile page.
func (h *AuthHandler) AfterLogin(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	_, created, err := h.Profiles.CreateIfAbsent(ctx, uid)
	if err != nil {
		return err
	}
	if created {
		return c.Redirect(http.StatusFound, ProfileUpdateURL)
	}
	return c.Redirect(http.StatusFound, ProfileURL)
}

// Logout revokes the session, clears the cookie and redirects to the
// configured landing page.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Accounts.Logout(ctx, middleware.SessionToken(c)); err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	target := h.Cfg.LogoutRedirectURL
	if target == "" {
		target = "/"
	}
	return c.Redirect(http.StatusFound, target)
}

func (h *AuthHandler) setSession(c echo.Context, tok utils.SessionToken) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext keeps only local absolute paths so ?next cannot redirect to
// another host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
