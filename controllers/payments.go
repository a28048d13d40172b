package controllers

import (
	"strconv"
	"time"

	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"
	"shulebook_go/services/finance"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PaymentController struct{}

// PaymentRequest is the create body
type PaymentRequest struct {
	Invoice         uint            `json:"invoice"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number"`
	DateReceived    *time.Time      `json:"date_received"`
	Notes           string          `json:"notes"`
}

// CreatePayment records a payment against an invoice and refreshes its totals
func (pc *PaymentController) CreatePayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Invoice == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invoice is required"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	receivedBy := user.ID

	payment, err := finance.NewPaymentService().ApplyPayment(finance.ApplyPaymentInput{
		InvoiceID:       req.Invoice,
		Amount:          req.Amount,
		Method:          req.Method,
		ReferenceNumber: req.ReferenceNumber,
		DateReceived:    req.DateReceived,
		ReceivedByID:    &receivedBy,
		Notes:           req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "CREATE", "payments", payment.ID, fiber.Map{
		"invoice_id": req.Invoice,
		"amount":     req.Amount,
		"method":     req.Method,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment recorded successfully",
		"payment": payment,
	})
}

// GetPayments returns payments with pagination and filters
func (pc *PaymentController) GetPayments(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var payments []models.Payment
	var total int64

	query := database.DB.Model(&models.Payment{})

	if invoiceID := c.Query("invoice_id"); invoiceID != "" {
		query = query.Where("invoice_id = ?", invoiceID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("method = ?", method)
	}
	if reference := c.Query("reference_number"); reference != "" {
		query = query.Where("reference_number = ?", reference)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("date_received >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date_received <= ?", to)
	}

	query.Count(&total)

	if err := query.Preload("Invoice").Preload("Invoice.Student").Preload("ReceivedBy").
		Order("date_received DESC, id DESC").
		Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch payments",
		})
	}

	return c.JSON(fiber.Map{
		"payments": payments,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetPayment returns a specific payment by ID
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment ID"})
	}

	var payment models.Payment
	if err := database.DB.Preload("Invoice").Preload("Invoice.Student").Preload("ReceivedBy").
		First(&payment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
	}

	return c.JSON(fiber.Map{"payment": payment})
}
