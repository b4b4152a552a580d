package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"golang.org/x/crypto/bcrypt"

	"github.com/giftcraft/ingest/internal/pkg/config"
)

// OpsBasicAuth protects operator endpoints with a single user whose password
// is stored as a bcrypt hash.
func OpsBasicAuth(cfg config.OpsConfig) fiber.Handler {
	user := strings.TrimSpace(cfg.User)
	hash := []byte(cfg.PasswordHash)
	return basicauth.New(basicauth.Config{
		Realm: "ops",
		Authorizer: func(u, p string) bool {
			if user == "" || len(hash) == 0 || u != user {
				return false
			}
			return bcrypt.CompareHashAndPassword(hash, []byte(p)) == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="ops"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Unauthorized"})
		},
	})
}

// OpsRateLimit limits operator requests per client IP. A nil storage keeps the
// counters in process memory.
func OpsRateLimit(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"status": "error", "message": "Too many requests"})
		},
	})
}
