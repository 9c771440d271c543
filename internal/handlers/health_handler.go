package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = fiber.StatusServiceUnavailable
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.Status(status).JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
