package controllers

import (
	"strconv"
	"strings"
	"time"

	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"
	"shulebook_go/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ExpenseController struct{}

var expenseCategories = []string{"SALARY", "UTILITIES", "MAINTENANCE", "SUPPLIES", "FOOD", "OTHER"}

// ExpenseRequest is the create/update body
type ExpenseRequest struct {
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	PaidTo       string          `json:"paid_to"`
	DateOccurred *time.Time      `json:"date_occurred"`
}

func validExpenseCategory(category string) bool {
	for _, c := range expenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

// GetExpenses returns expenses with pagination and filters
func (ec *ExpenseController) GetExpenses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var expenses []models.Expense
	var total int64

	query := database.DB.Model(&models.Expense{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("date_occurred >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date_occurred <= ?", to)
	}

	query.Count(&total)

	if err := query.Preload("ApprovedBy").
		Order("date_occurred DESC, id DESC").
		Offset(offset).Limit(limit).Find(&expenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch expenses",
		})
	}

	return c.JSON(fiber.Map{
		"expenses": expenses,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateExpense records a new expense, optionally with a receipt scan.
// Accepts multipart (with "receipt" file field) or plain JSON.
func (ec *ExpenseController) CreateExpense(c *fiber.Ctx) error {
	var req ExpenseRequest
	if strings.HasPrefix(c.Get("Content-Type"), "multipart/") {
		req.Category = strings.ToUpper(c.FormValue("category"))
		req.Description = c.FormValue("description")
		req.PaidTo = c.FormValue("paid_to")
		if amount, err := decimal.NewFromString(c.FormValue("amount")); err == nil {
			req.Amount = amount
		}
		if t := parseStatementDate(c.FormValue("date_occurred")); t != nil {
			req.DateOccurred = t
		}
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !validExpenseCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense category"})
	}
	if !req.Amount.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be greater than zero"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	occurred := time.Now()
	if req.DateOccurred != nil {
		occurred = *req.DateOccurred
	}
	paidTo := req.PaidTo
	if paidTo == "" {
		paidTo = "Unknown"
	}

	expense := models.Expense{
		Category:     req.Category,
		Status:       "PENDING",
		Amount:       req.Amount,
		Description:  req.Description,
		PaidTo:       paidTo,
		DateOccurred: occurred,
	}

	// Receipt scan upload is best-effort: a storage failure never loses the expense
	if fh, err := c.FormFile("receipt"); err == nil && fh != nil {
		if svc, serr := storage.NewStorageService(); serr == nil {
			if url, uerr := svc.UploadFile(fh, "receipts", user.ID); uerr == nil {
				expense.ReceiptURL = url
			} else {
				logrus.WithError(uerr).Warn("receipt upload failed")
			}
		}
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create expense"})
	}

	middleware.LogActivity(c, "CREATE", "expenses", expense.ID, fiber.Map{
		"category": expense.Category,
		"amount":   expense.Amount,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Expense recorded successfully",
		"expense": expense,
	})
}

// ApproveExpense marks a pending expense as approved or declined
func (ec *ExpenseController) ApproveExpense(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}

	var body struct {
		Status string `json:"status"` // APPROVED or DECLINED
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if body.Status != "APPROVED" && body.Status != "DECLINED" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "status must be APPROVED or DECLINED"})
	}

	var expense models.Expense
	if err := database.DB.First(&expense, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}
	if expense.Status != "PENDING" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expense has already been reviewed"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	approvedBy := user.ID

	expense.Status = body.Status
	expense.ApprovedByID = &approvedBy
	if err := database.DB.Save(&expense).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update expense"})
	}

	middleware.LogActivity(c, "UPDATE", "expenses", expense.ID, fiber.Map{"status": expense.Status})

	return c.JSON(fiber.Map{
		"message": "Expense " + expense.Status,
		"expense": expense,
	})
}
