package middleware

import (
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/owner"
	"github.com/gofiber/fiber/v2"
)

// StaffRequired allows staff and superusers through. It expects the caller
// to have been loaded by CurrentUser.
func StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := owner.GetUser(c)
		if err != nil {
			return unauthorized(c, "Unauthorized")
		}

		if user.IsStaff || user.IsSuperuser {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
