package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/recipe-sharing-api/internal/auth"
	"github.com/iliyamo/recipe-sharing-api/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, target string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (auth.Identity, error) {
	if raw == "good" {
		return auth.Identity{ID: 7, Username: "chef1", Email: "chef1@example.com"}, nil
	}
	return auth.Identity{}, errors.New("bad token")
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"id": id.ID})
	}, JWTAuth(stubVerifier{}, zerolog.Nop()))

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc", "Bearer bad", "good"} {
		rec := do(e, http.MethodGet, "/me", echo.HeaderAuthorization, h)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}

	rec := do(e, http.MethodGet, "/me", echo.HeaderAuthorization, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/me", echo.HeaderAuthorization, "bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucket_LimitsPerIPAndRoute(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, zerolog.Nop()))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/auth/login", ok)
	e.POST("/auth/register", ok)

	for i := 0; i < 2; i++ {
		rec := do(e, http.MethodPost, "/auth/login", echo.HeaderXRealIP, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(e, http.MethodPost, "/auth/login", echo.HeaderXRealIP, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = do(e, http.MethodPost, "/auth/register", echo.HeaderXRealIP, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code, "other route has its own bucket")
	rec = do(e, http.MethodPost, "/auth/login", echo.HeaderXRealIP, "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code, "other ip has its own bucket")
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Hour, Prefix: "rl"}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, zerolog.Nop()))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/x").Code)
	}

	e2 := echo.New()
	e2.Use(NewTokenBucket(cfg, nil, zerolog.Nop()))
	e2.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e2, http.MethodGet, "/x").Code)
	}
}

func TestRedisCache_HitMissAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		GenKey:       "cache:gen",
		MaxBodyBytes: 1 << 20,
	}
	var calls atomic.Int32
	e := echo.New()
	e.Use(InvalidateOnWrite(cfg, rdb, zerolog.Nop()))
	e.GET("/recipes/:id", func(c echo.Context) error {
		n := calls.Add(1)
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "n": n})
	}, NewRedisCache(cfg, rdb, zerolog.Nop()))
	e.PUT("/recipes/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.DELETE("/recipes/:id", func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	})

	first := do(e, http.MethodGet, "/recipes/1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/recipes/1")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.EqualValues(t, 1, calls.Load())

	other := do(e, http.MethodGet, "/recipes/2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"), "ids do not share entries")

	do(e, http.MethodDelete, "/recipes/1")
	assert.Equal(t, "HIT", do(e, http.MethodGet, "/recipes/1").Header().Get("X-Cache"), "failed write keeps cache")

	do(e, http.MethodPut, "/recipes/1")
	after := do(e, http.MethodGet, "/recipes/1")
	assert.Equal(t, "MISS", after.Header().Get("X-Cache"))
	assert.NotEqual(t, first.Body.String(), after.Body.String())
}

func TestRedisCache_SkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}, TTL: time.Minute, Prefix: "c", GenKey: "c:gen"}
	e := echo.New()
	e.GET("/recipes/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}, NewRedisCache(cfg, rdb, zerolog.Nop()))

	do(e, http.MethodGet, "/recipes/9")
	assert.Equal(t, "MISS", do(e, http.MethodGet, "/recipes/9").Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
