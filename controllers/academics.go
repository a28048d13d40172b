package controllers

import (
	"shulebook_go/database"
	"shulebook_go/models"

	"github.com/gofiber/fiber/v2"
)

// AcademicsController exposes the academic calendar and class list read-only.
// These records are maintained by the admissions side; billing only consumes
// them.
type AcademicsController struct{}

// GetAcademicYears returns all academic years, newest first
func (ac *AcademicsController) GetAcademicYears(c *fiber.Ctx) error {
	var years []models.AcademicYear
	if err := database.DB.Order("name DESC").Find(&years).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch academic years",
		})
	}

	return c.JSON(fiber.Map{"academic_years": years})
}

// GetActiveYear returns the currently active academic year and term
func (ac *AcademicsController) GetActiveYear(c *fiber.Ctx) error {
	var year models.AcademicYear
	if err := database.DB.Where("is_active = ?", true).First(&year).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active academic year"})
	}

	var term models.Term
	activeTerm := &term
	if err := database.DB.Where("academic_year_id = ? AND is_active = ?", year.ID, true).First(&term).Error; err != nil {
		activeTerm = nil
	}

	return c.JSON(fiber.Map{
		"academic_year": year,
		"active_term":   activeTerm,
	})
}

// GetTerms returns the terms of an academic year
func (ac *AcademicsController) GetTerms(c *fiber.Ctx) error {
	var terms []models.Term

	query := database.DB.Model(&models.Term{})
	if yearID := c.Query("academic_year_id"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}

	if err := query.Order("academic_year_id DESC, number").Find(&terms).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch terms",
		})
	}

	return c.JSON(fiber.Map{"terms": terms})
}

// GetClasses returns all school classes
func (ac *AcademicsController) GetClasses(c *fiber.Ctx) error {
	var classes []models.SchoolClass

	query := database.DB.Model(&models.SchoolClass{})
	if level := c.Query("level"); level != "" {
		query = query.Where("name = ?", level)
	}

	if err := query.Order("name, stream").Find(&classes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch classes",
		})
	}

	return c.JSON(fiber.Map{"classes": classes})
}
