package controllers

import (
	"errors"

	"shulebook_go/services/finance"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondServiceError maps service-layer errors onto HTTP statuses.
// Validation failures are the caller's fault; a missing row is 404;
// anything else is a server error.
func respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, finance.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}

// parseIDParam parses the :id route parameter
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
