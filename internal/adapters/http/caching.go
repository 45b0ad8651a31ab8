package http

import "github.com/gofiber/fiber/v2"

// CachingMiddleware sets Cache-Control headers on GET responses. The story
// endpoints are POST and always pass through untouched; response reuse for
// those lives server-side in the Valkey cache.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet {
			return err
		}
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		var ttl string
		switch c.Path() {
		case "/v1/health", "/v1/ready":
			ttl = "public, max-age=10"
		case "/metrics":
			ttl = "no-cache"
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
