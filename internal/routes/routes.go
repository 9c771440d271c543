package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/apps"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Setup mounts every route. limiterStorage may be nil for in-memory limits.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	limiterStorage fiber.Storage,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	app.Static(cfg.MediaURL, cfg.MediaRoot)

	api := app.Group("/api")

	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           limiterStorage,
	}))

	api.Get("/health", healthHandler.Check)

	// Account creation and token issue are public.
	users := api.Group("/users")
	users.Post("/", userHandler.Register)
	users.Post("/token", userHandler.Token)
	users.Post("/token/refresh", userHandler.Refresh)

	protect := func(h ...fiber.Handler) []fiber.Handler {
		return append(middleware.Authenticated(cfg, db), h...)
	}
	users.Post("/logout", protect(userHandler.Logout)...)
	users.Get("/me", protect(userHandler.Me)...)
	users.Put("/me", protect(userHandler.UpdateMe)...)
	users.Patch("/me", protect(userHandler.UpdateMe)...)

	admin := api.Group("/admin", protect(middleware.StaffRequired())...)
	admin.Get("/users", adminHandler.ListUsers)

	for _, p := range plugins {
		p.RegisterRoutes(api, db, cfg)
	}
}
