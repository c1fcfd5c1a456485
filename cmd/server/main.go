package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/iliyamo/movie-rentals/internal/config"
	"github.com/iliyamo/movie-rentals/internal/database"
	"github.com/iliyamo/movie-rentals/internal/handler"
	"github.com/iliyamo/movie-rentals/internal/logger"
	"github.com/iliyamo/movie-rentals/internal/middleware"
	"github.com/iliyamo/movie-rentals/internal/queue"
	"github.com/iliyamo/movie-rentals/internal/repository"
	"github.com/iliyamo/movie-rentals/internal/repository/memory"
	"github.com/iliyamo/movie-rentals/internal/router"
	"github.com/iliyamo/movie-rentals/internal/service"
	"github.com/iliyamo/movie-rentals/internal/view"
)

// stores groups the repositories for the configured driver.
type stores struct {
	users    service.UserRepository
	sessions service.SessionRepository
	profiles service.ProfileRepository
	movies   service.MovieRepository
	ping     func(ctx context.Context) error
	close    func() error
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == "memory" {
		db := memory.New()
		return stores{users: db.Users, sessions: db.Sessions, profiles: db.Profiles, movies: db.Movies, close: func() error { return nil }}, nil
	}
	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, err
	}
	return stores{
		users:    repository.NewUserRepo(db),
		sessions: repository.NewSessionRepo(db),
		profiles: repository.NewProfileRepo(db),
		movies:   repository.NewMovieRepo(db),
		ping:     db.PingContext,
		close:    db.Close,
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}
	cfg := config.Load()

	lg, err := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		lg.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer func() { _ = st.close() }()
	lg.Info("store ready", "driver", cfg.StoreDriver)

	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		lg.Warn("redis unavailable, page cache and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	// events stays a nil interface when RabbitMQ is not configured.
	var events service.EventPublisher
	if cfg.AMQPURL != "" {
		pub := queue.NewPublisher(cfg.AMQPURL, lg)
		defer func() { _ = pub.Close() }()
		events = pub

		purge := func(ctx context.Context, ev queue.MovieEvent) error {
			n, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
			if err != nil {
				return err
			}
			lg.Debug("page cache purged", "event", ev.Type, "keys", n)
			return nil
		}
		go queue.NewConsumer(cfg.AMQPURL, purge, lg).Run(ctx)
	} else {
		lg.Warn("RABBITMQ_URL not set, listing events disabled")
	}

	profiles := service.NewProfileStore(st.profiles, lg)
	movies := service.NewMovieStore(st.movies, events, lg)
	// The local purge runs before the redirect; the consumer covers other
	// instances sharing the cache.
	if rdb != nil && cacheCfg.Enabled {
		movies.SetPageInvalidator(middleware.NewPageCache(rdb, cacheCfg.Prefix))
	}
	accounts := service.NewAccountService(st.users, st.sessions, cfg.JWTSecret, cfg.SessionTTLMin, cfg.BcryptCost, lg)

	renderer, err := view.New()
	if err != nil {
		lg.Error("load templates", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(lg)
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(slogecho.New(lg))
	e.Use(echomw.Recover())

	auth := handler.NewAuthHandler(cfg, accounts, profiles)
	router.RegisterRoutes(e, &handler.HealthHandler{Ping: st.ping})
	router.RegisterAccounts(e, auth, middleware.NewTokenBucket(rateCfg, rdb, lg))
	router.RegisterProfile(e, auth, handler.NewProfileHandler(profiles, movies), handler.NewMovieHandler(movies),
		accounts, profiles, cfg.LoginURL, lg)
	router.RegisterPublic(e, handler.NewPublicHandler(movies), middleware.NewRedisCache(cacheCfg, rdb, lg))

	go func() {
		addr := ":" + cfg.Port
		lg.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", "error", err)
	}
	lg.Info("bye")
}
