package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_Bypass(t *testing.T) {
	for _, env := range []string{"test", "development", "stress"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			allowed, remaining, err := CheckRateLimit(context.Background(), nil, "post_create", "1", 1, time.Minute)
			assert.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, 1, remaining)
		})
	}
}

func TestCheckRateLimit_NilRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	allowed, _, err := CheckRateLimit(context.Background(), nil, "post_create", "1", 1, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestCheckRateLimit_CountsWithinWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := CheckRateLimit(ctx, rdb, "report", "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, err := CheckRateLimit(ctx, rdb, "report", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
	assert.Equal(t, time.Minute, mr.TTL("rl:report:ip:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = CheckRateLimit(ctx, rdb, "report", "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("Bypass in test mode", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, RateLimitRule{Limit: 1, Window: time.Minute}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/test", RateLimit(nil, RateLimitRule{Limit: 1, Window: time.Minute}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/sensitive", RateLimit(nil, RateLimitRule{Limit: 1, Window: time.Minute, Policy: FailClosed}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("Exceeded limit returns 429", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newMiniRedis(t)
		app := fiber.New()
		app.Post("/post/new", RateLimit(rdb, RateLimitRule{Name: "post_create", Limit: 1, Window: time.Minute}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/post/new", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/post/new", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
		_ = resp.Body.Close()
	})
}
