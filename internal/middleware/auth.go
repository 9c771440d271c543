package middleware

import (
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/owner"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c, "Authentication credentials were not provided or are invalid")
		},
	})
}

// CurrentUser resolves the token subject to an active user. It must run
// after JWTProtected.
func CurrentUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := owner.GetUserID(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c, "User not found")
		}
		if !user.IsActive {
			return unauthorized(c, "User inactive or deleted")
		}

		owner.SetUser(c, &user)
		return c.Next()
	}
}

// Authenticated chains the token check and user lookup.
func Authenticated(cfg *config.Config, db *gorm.DB) []fiber.Handler {
	return []fiber.Handler{JWTProtected(cfg), CurrentUser(db)}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: message,
	})
}
