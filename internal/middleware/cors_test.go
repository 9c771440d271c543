package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOrigins(t *testing.T) {
	assert.Equal(t, "*", normalizeOrigins(""))
	assert.Equal(t, "*", normalizeOrigins(" , "))
	assert.Equal(t, "*", normalizeOrigins("https://a.example, *"))
	assert.Equal(t, "https://a.example,https://b.example", normalizeOrigins(" https://a.example/ ,https://b.example"))
}

func preflight(t *testing.T, origins, origin string) *http.Response {
	t.Helper()
	app := fiber.New()
	app.Use(CORS(&config.Config{CORSOrigins: origins}))
	app.Get("/api/recipes", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/recipes", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCORSExplicitOrigins(t *testing.T) {
	resp := preflight(t, "https://app.example/", "https://app.example")

	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.Equal(t, "600", resp.Header.Get("Access-Control-Max-Age"))

	other := preflight(t, "https://app.example", "https://evil.example")
	assert.Empty(t, other.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	resp := preflight(t, "*", "https://anywhere.example")

	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
}
