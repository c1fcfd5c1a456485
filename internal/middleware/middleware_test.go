package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rentals/internal/config"
	"github.com/iliyamo/movie-rentals/internal/logger"
	"github.com/iliyamo/movie-rentals/internal/model"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "path_query",
		Prefix:       "pages",
		MaxBodyBytes: 1 << 20,
	}
}

func TestRedisCache_HitMissAndPerPathKeys(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/movie/:id", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "movie "+c.Param("id"))
	}, NewRedisCache(cacheConfig(), rdb, logger.Discard()))

	first := serve(e, httptest.NewRequest(http.MethodGet, "/movie/1", nil))
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "movie 1", first.Body.String())

	second := serve(e, httptest.NewRequest(http.MethodGet, "/movie/1", nil))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "movie 1", second.Body.String())
	assert.Equal(t, 1, calls)

	other := serve(e, httptest.NewRequest(http.MethodGet, "/movie/2", nil))
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, "movie 2", other.Body.String())
	assert.Equal(t, 2, calls)
}

func TestRedisCache_BypassedWithSession(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "home")
	}, NewRedisCache(cacheConfig(), rdb, logger.Discard()))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok"})
		rec := serve(e, req)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestRedisCache_SkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	calls := 0
	e := echo.New()
	e.GET("/movie/:id", func(c echo.Context) error {
		calls++
		return c.String(http.StatusNotFound, "nope")
	}, NewRedisCache(cacheConfig(), rdb, logger.Discard()))

	serve(e, httptest.NewRequest(http.MethodGet, "/movie/9", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/movie/9", nil))
	assert.Equal(t, 2, calls)
}

func TestPurgeCache(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, "pages:a", "1", 0).Err())
	require.NoError(t, rdb.Set(ctx, "pages:b", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "rl:ip:1", "3", 0).Err())

	n, err := PurgeCache(ctx, rdb, "pages")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, mr.Exists("pages:a"))
	assert.True(t, mr.Exists("rl:ip:1"))

	n, err = PurgeCache(ctx, nil, "pages")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestTokenBucket_BlocksAfterCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/accounts/login", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, NewTokenBucket(cfg, rdb, logger.Discard()))

	for i := 0; i < 2; i++ {
		rec := serve(e, httptest.NewRequest(http.MethodPost, "/accounts/login", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec := serve(e, httptest.NewRequest(http.MethodPost, "/accounts/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, logger.Discard()))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type fakeAuth map[string]uint64

func (f fakeAuth) Authenticate(_ context.Context, raw string) (uint64, error) {
	if uid, ok := f[raw]; ok {
		return uid, nil
	}
	return 0, errors.New("unauthenticated")
}

func TestSessionAuth(t *testing.T) {
	e := echo.New()
	e.GET("/profile", func(c echo.Context) error {
		uid, ok := UserID(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), uid)
		return c.String(http.StatusOK, "uid:"+userKey(c)+":"+c.Get(CtxSessionToken).(string))
	}, SessionAuth(fakeAuth{"good": 7}, "/accounts/login", logger.Discard()))

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/profile?tab=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/accounts/login?next=%2Fprofile%3Ftab%3D1", rec.Header().Get(echo.HeaderLocation))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "bad"})
	rec = serve(e, req)
	assert.Equal(t, http.StatusFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid:7:good", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good")
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuth_LogsRejectedToken(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := echo.New()
	e.GET("/profile", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, SessionAuth(fakeAuth{"good": 7}, "/accounts/login", log))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "bad"})
	rec := serve(e, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, buf.String(), "session rejected")
	assert.Contains(t, buf.String(), "path=/profile")
	assert.Contains(t, buf.String(), "error=unauthenticated")
}

type fakeProvisioner struct {
	profiles map[uint64]*model.Profile
}

func (f *fakeProvisioner) CreateIfAbsent(_ context.Context, uid uint64) (*model.Profile, bool, error) {
	if p, ok := f.profiles[uid]; ok {
		return p, false, nil
	}
	p := &model.Profile{UserID: uid}
	f.profiles[uid] = p
	return p, true, nil
}

func TestRequireProfile(t *testing.T) {
	prov := &fakeProvisioner{profiles: map[uint64]*model.Profile{}}
	e := echo.New()
	e.GET("/profile", func(c echo.Context) error {
		p, ok := Profile(c)
		require.True(t, ok)
		assert.Equal(t, uint64(7), p.UserID)
		return c.NoContent(http.StatusOK)
	}, SessionAuth(fakeAuth{"good": 7}, "/accounts/login", nil), RequireProfile(prov, "/profile/update"))

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/profile", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
		return r
	}

	rec := serve(e, req())
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/update", rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, req())
	assert.Equal(t, http.StatusOK, rec.Code)
}
