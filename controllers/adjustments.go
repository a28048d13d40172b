package controllers

import (
	"strconv"

	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"
	"shulebook_go/services/finance"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AdjustmentController struct{}

// AdjustmentRequest is the create body
type AdjustmentRequest struct {
	InvoiceID      uint            `json:"invoice_id"`
	AdjustmentType string          `json:"adjustment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	OriginModel    string          `json:"origin_model"`
	OriginID       uint            `json:"origin_id"`
}

// CreateAdjustment appends a credit or debit note to an invoice
func (ac *AdjustmentController) CreateAdjustment(c *fiber.Ctx) error {
	var req AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.InvoiceID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invoice_id is required"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	approvedBy := user.ID

	adjustment, err := finance.NewAdjustmentService().ApplyAdjustment(finance.ApplyAdjustmentInput{
		InvoiceID:      req.InvoiceID,
		AdjustmentType: req.AdjustmentType,
		Amount:         req.Amount,
		Reason:         req.Reason,
		ApprovedByID:   &approvedBy,
		OriginModel:    req.OriginModel,
		OriginID:       req.OriginID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "CREATE", "adjustments", adjustment.ID, fiber.Map{
		"invoice_id":      req.InvoiceID,
		"adjustment_type": req.AdjustmentType,
		"amount":          req.Amount,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Adjustment recorded successfully",
		"adjustment": adjustment,
	})
}

// GetAdjustments returns adjustments with pagination and filters
func (ac *AdjustmentController) GetAdjustments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var adjustments []models.Adjustment
	var total int64

	query := database.DB.Model(&models.Adjustment{})

	if invoiceID := c.Query("invoice_id"); invoiceID != "" {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	if adjType := c.Query("adjustment_type"); adjType != "" {
		query = query.Where("adjustment_type = ?", adjType)
	}
	if origin := c.Query("origin_model"); origin != "" {
		query = query.Where("origin_model = ?", origin)
	}

	query.Count(&total)

	if err := query.Preload("ApprovedBy").
		Order("id DESC").
		Offset(offset).Limit(limit).Find(&adjustments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch adjustments",
		})
	}

	return c.JSON(fiber.Map{
		"adjustments": adjustments,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
