package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/giftcraft/ingest/internal/pkg/config"
)

func newOpsApp(t *testing.T, cfg config.OpsConfig) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/ops", OpsBasicAuth(cfg), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestOpsBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	app := newOpsApp(t, config.OpsConfig{User: "ops", PasswordHash: string(hash)})

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{name: "valid", user: "ops", pass: "s3cret", setAuth: true, want: fiber.StatusOK},
		{name: "wrong password", user: "ops", pass: "nope", setAuth: true, want: fiber.StatusUnauthorized},
		{name: "wrong user", user: "root", pass: "s3cret", setAuth: true, want: fiber.StatusUnauthorized},
		{name: "no header", want: fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/ops", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestOpsBasicAuth_NoHashRejectsEverything(t *testing.T) {
	app := newOpsApp(t, config.OpsConfig{User: "ops"})
	req := httptest.NewRequest(fiber.MethodGet, "/ops", nil)
	req.SetBasicAuth("ops", "")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOpsRateLimit(t *testing.T) {
	app := fiber.New()
	app.Get("/ops", OpsRateLimit(2, nil), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ops", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}
