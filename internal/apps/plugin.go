package apps

import (
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique module identifier.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts module routes on the given Fiber group.
	// The group is prefixed with /api and carries no authentication;
	// modules attach middleware.Authenticated to their own groups.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
