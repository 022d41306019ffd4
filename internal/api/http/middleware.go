package httpapi

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const apiKeyHeader = "X-API-Key"

func guardHandlers(opts Options) []fiber.Handler {
	var handlers []fiber.Handler

	if opts.RateLimitMax > 0 {
		handlers = append(handlers, limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: opts.RateLimitWindow,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
			},
		}))
	}

	if opts.APIKey != "" {
		handlers = append(handlers, requireAPIKey(opts.APIKey))
	}

	return handlers
}

// requireAPIKey rejects requests whose X-API-Key header does not match key.
func requireAPIKey(key string) fiber.Handler {
	want := []byte(key)
	return func(c *fiber.Ctx) error {
		if subtle.ConstantTimeCompare([]byte(c.Get(apiKeyHeader)), want) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing API key")
		}
		return c.Next()
	}
}
