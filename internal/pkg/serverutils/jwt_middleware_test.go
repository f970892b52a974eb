package serverutils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDReturnsParsedLocals(t *testing.T) {
	want := uuid.New()
	app := fiber.New()
	app.Get("/p", func(c *fiber.Ctx) error {
		c.Locals("user_id", want.String())
		got, err := UserID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/p", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestUserIDUnauthorizedWithoutMiddleware(t *testing.T) {
	// A route wired without JwtMiddleware has no user_id local; the helper
	// must return an error instead of panicking on the assertion.
	app := fiber.New()
	app.Get("/p", func(c *fiber.Ctx) error {
		_, err := UserID(c)
		return err
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/p", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUserIDUnauthorizedOnMalformedID(t *testing.T) {
	app := fiber.New()
	app.Get("/p", func(c *fiber.Ctx) error {
		c.Locals("user_id", "not-a-uuid")
		_, err := UserID(c)
		return err
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/p", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
