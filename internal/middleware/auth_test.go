package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arepabuelas/internal/config"
	"github.com/example/arepabuelas/internal/models"
)

func adminTestApp(user *models.User) *fiber.App {
	app := fiber.New()
	app.Get("/admin", func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(userContextKey, user)
		}
		return c.Next()
	}, RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"admin passes", &models.User{Role: models.RoleAdmin, Validated: true}, http.StatusOK},
		{"regular user forbidden", &models.User{Role: models.RoleUser, Validated: true}, http.StatusForbidden},
		{"anonymous unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := adminTestApp(tt.user)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuthRejectsMalformedHeaders(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}

	// The guard never reaches the database for these requests.
	app := fiber.New()
	app.Get("/me", Auth(nil, cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"empty bearer", "Bearer "},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestCurrentUserEmptyContext(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		assert.False(t, ok)
		assert.Nil(t, user)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
