package controllers

import (
	"strconv"

	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type FeeStructureController struct{}

// FeeStructureRequest is the create/update body
type FeeStructureRequest struct {
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	AcademicYearID uint            `json:"academic_year_id"`
	Term           int             `json:"term"`
	ClassID        *uint           `json:"class_id"`
	Description    string          `json:"description"`
	IsActive       *bool           `json:"is_active"`
}

func (req *FeeStructureRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if !req.Amount.IsPositive() {
		return "amount must be greater than zero"
	}
	if req.AcademicYearID == 0 {
		return "academic_year_id is required"
	}
	if req.Term < 1 || req.Term > 3 {
		return "term must be 1, 2 or 3"
	}
	return ""
}

// GetFeeStructures returns fee structures with pagination and filters
func (fc *FeeStructureController) GetFeeStructures(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var fees []models.FeeStructure
	var total int64

	query := database.DB.Model(&models.FeeStructure{})

	if yearID := c.Query("academic_year_id"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}
	if classID := c.Query("class_id"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	query.Count(&total)

	if err := query.Preload("AcademicYear").Preload("Class").
		Order("academic_year_id DESC, term, name").
		Offset(offset).Limit(limit).Find(&fees).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch fee structures",
		})
	}

	return c.JSON(fiber.Map{
		"fee_structures": fees,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetFeeStructure returns a specific fee structure by ID
func (fc *FeeStructureController) GetFeeStructure(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee structure ID"})
	}

	var fee models.FeeStructure
	if err := database.DB.Preload("AcademicYear").Preload("Class").First(&fee, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee structure not found"})
	}

	return c.JSON(fiber.Map{"fee_structure": fee})
}

// CreateFeeStructure creates a new fee structure
func (fc *FeeStructureController) CreateFeeStructure(c *fiber.Ctx) error {
	var req FeeStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	var year models.AcademicYear
	if err := database.DB.First(&year, req.AcademicYearID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Academic year not found"})
	}
	if req.ClassID != nil {
		var class models.SchoolClass
		if err := database.DB.First(&class, *req.ClassID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Class not found"})
		}
	}

	fee := models.FeeStructure{
		Name:           req.Name,
		Amount:         req.Amount,
		AcademicYearID: req.AcademicYearID,
		Term:           req.Term,
		ClassID:        req.ClassID,
		Description:    req.Description,
		IsActive:       true,
	}
	if req.IsActive != nil {
		fee.IsActive = *req.IsActive
	}

	if err := database.DB.Create(&fee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create fee structure"})
	}

	middleware.LogActivity(c, "CREATE", "fee_structures", fee.ID, fiber.Map{"name": fee.Name, "amount": fee.Amount})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Fee structure created successfully",
		"fee_structure": fee,
	})
}

// UpdateFeeStructure updates an existing fee structure. Amounts already
// billed are snapshots on invoice items, so edits never touch issued invoices.
func (fc *FeeStructureController) UpdateFeeStructure(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee structure ID"})
	}

	var fee models.FeeStructure
	if err := database.DB.First(&fee, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee structure not found"})
	}

	var req FeeStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	fee.Name = req.Name
	fee.Amount = req.Amount
	fee.AcademicYearID = req.AcademicYearID
	fee.Term = req.Term
	fee.ClassID = req.ClassID
	fee.Description = req.Description
	if req.IsActive != nil {
		fee.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&fee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update fee structure"})
	}

	middleware.LogActivity(c, "UPDATE", "fee_structures", fee.ID, fiber.Map{"name": fee.Name})

	return c.JSON(fiber.Map{
		"message":       "Fee structure updated successfully",
		"fee_structure": fee,
	})
}

// DeleteFeeStructure soft-deletes a fee structure. Invoices already generated
// from it keep their item snapshots.
func (fc *FeeStructureController) DeleteFeeStructure(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid fee structure ID"})
	}

	var fee models.FeeStructure
	if err := database.DB.First(&fee, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Fee structure not found"})
	}

	if err := database.DB.Delete(&fee).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete fee structure"})
	}

	middleware.LogActivity(c, "DELETE", "fee_structures", fee.ID, fiber.Map{"name": fee.Name})

	return c.JSON(fiber.Map{"message": "Fee structure deleted successfully"})
}
