package handlers

import (
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	userService *services.UserService
}

func NewAdminHandler(userService *services.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.ListUsers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch users",
		})
	}

	resp := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		resp = append(resp, dto.AdminUserResponse{
			UserResponse: services.ToUserResponse(u),
			IsActive:     u.IsActive,
			IsStaff:      u.IsStaff,
			IsSuperuser:  u.IsSuperuser,
		})
	}
	return c.JSON(resp)
}
