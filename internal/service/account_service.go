package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-rentals/internal/form"
	"github.com/iliyamo/movie-rentals/internal/model"
	"github.com/iliyamo/movie-rentals/internal/repository"
	"github.com/iliyamo/movie-rentals/internal/utils"
)

// UserRepository is the account persistence the AccountService needs.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// SessionRepository persists login sessions by token id hash.
type SessionRepository interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Validate(ctx context.Context, tokenHash string) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// AccountService signs users up, logs them in and out and resolves
// session tokens to user ids.
type AccountService struct {
	users      UserRepository
	sessions   SessionRepository
	secret     string
	ttlMin     int
	bcryptCost int
	log        *slog.Logger
}

func NewAccountService(users UserRepository, sessions SessionRepository, secret string, ttlMin, bcryptCost int, log *slog.Logger) *AccountService {
	return &AccountService{users: users, sessions: sessions, secret: secret, ttlMin: ttlMin, bcryptCost: bcryptCost, log: log}
}

// Signup creates an account and returns its id.
func (s *AccountService) Signup(ctx context.Context, email, password string) (uint64, error) {
	values := map[string]string{"email": strings.ToLower(email), "password": password}
	if err := invalid(form.Validate(form.AccountFields, values)); err != nil {
		return 0, err
	}
	email = values["email"]
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}
	id, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return 0, invalid(form.Errors{"email": "A user is already registered with this email address."})
		}
		return 0, errors.Wrap(err, "create user")
	}
	s.log.Info("user signed up", "user_id", id)
	return id, nil
}

// Login checks the credentials and opens a session.
func (s *AccountService) Login(ctx context.Context, email, password string) (utils.SessionToken, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return utils.SessionToken{}, ErrInvalidCredentials
		}
		return utils.SessionToken{}, errors.Wrap(err, "load user")
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.SessionToken{}, ErrInvalidCredentials
	}
	return s.OpenSession(ctx, u.ID)
}

// OpenSession issues a session token for userID and records it.
func (s *AccountService) OpenSession(ctx context.Context, userID uint64) (utils.SessionToken, error) {
	tok, err := utils.NewSessionToken(s.secret, userID, s.ttlMin)
	if err != nil {
		return utils.SessionToken{}, errors.Wrap(err, "issue session")
	}
	if err := s.sessions.Store(ctx, userID, utils.HashTokenID(tok.ID), tok.Exp); err != nil {
		return utils.SessionToken{}, errors.Wrap(err, "store session")
	}
	s.log.Info("session opened", "user_id", userID, "expires", tok.Exp)
	return tok, nil
}

// Authenticate resolves a raw session token to the user id it belongs to.
func (s *AccountService) Authenticate(ctx context.Context, raw string) (uint64, error) {
	uid, jti, err := utils.ParseSessionToken(s.secret, raw)
	if err != nil {
		return 0, ErrUnauthenticated
	}
	stored, err := s.sessions.Validate(ctx, utils.HashTokenID(jti))
	if err != nil {
		if errors.Is(err, repository.ErrSessionInvalid) {
			return 0, ErrUnauthenticated
		}
		return 0, errors.Wrap(err, "validate session")
	}
	if stored != uid {
		return 0, ErrUnauthenticated
	}
	return uid, nil
}

// Logout revokes the session behind raw.  Unknown or invalid tokens are
// ignored so logging out twice is harmless.
func (s *AccountService) Logout(ctx context.Context, raw string) error {
	uid, jti, err := utils.ParseSessionToken(s.secret, raw)
	if err != nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, utils.HashTokenID(jti)); err != nil {
		return errors.Wrap(err, "revoke session")
	}
	s.log.Info("session revoked", "user_id", uid)
	return nil
}
