package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const corsMaxAge = 600

// CORS admits the configured origins. Credentials are only allowed for an
// explicit origin list, never for "*".
func CORS(cfg *config.Config) fiber.Handler {
	origins := normalizeOrigins(cfg.CORSOrigins)

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut,
			fiber.MethodPatch, fiber.MethodDelete, fiber.MethodOptions,
		}, ","),
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		ExposeHeaders:    fiber.HeaderXRequestID,
		AllowCredentials: origins != "*",
		MaxAge:           corsMaxAge,
	})
}

// normalizeOrigins trims a comma-separated origin list. Empty means "*".
func normalizeOrigins(raw string) string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			return "*"
		}
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
