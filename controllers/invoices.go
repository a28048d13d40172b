package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"shulebook_go/config"
	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"
	"shulebook_go/services/finance"
	"shulebook_go/services/messaging"
	"shulebook_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type InvoiceController struct{}

const dashboardCacheKey = "finance:dashboard_stats"

// GetInvoices returns invoices with pagination and filters
func (ic *InvoiceController) GetInvoices(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var invoices []models.Invoice
	var total int64

	query := database.DB.Model(&models.Invoice{})

	if yearID := c.Query("academic_year_id"); yearID != "" {
		query = query.Where("academic_year_id = ?", yearID)
	}
	if term := c.Query("term"); term != "" {
		query = query.Where("term = ?", term)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if classID := c.Query("class_id"); classID != "" {
		query = query.Joins("JOIN students ON students.id = invoices.student_id").
			Where("students.current_class_id = ?", classID)
	}
	if search := c.Query("search"); search != "" {
		query = query.Joins("JOIN students ON students.id = invoices.student_id").
			Where("students.admission_number LIKE ? OR students.full_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)

	if err := query.Preload("Student").Preload("Student.CurrentClass").Preload("AcademicYear").
		Order("invoices.id DESC").
		Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch invoices",
		})
	}

	return c.JSON(fiber.Map{
		"invoices": invoices,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetInvoice returns the full invoice representation with items, adjustments
// and payments
func (ic *InvoiceController) GetInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID"})
	}

	var invoice models.Invoice
	if err := database.DB.
		Preload("Student").Preload("Student.CurrentClass").Preload("AcademicYear").
		Preload("Items").Preload("Adjustments").Preload("Payments").
		First(&invoice, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Invoice not found"})
	}

	return c.JSON(fiber.Map{
		"invoice": utils.ToInvoiceDTO(invoice),
	})
}

// GenerateBatchRequest selects the cohort to invoice
type GenerateBatchRequest struct {
	YearID  uint   `json:"year_id"`
	Term    int    `json:"term"`
	Level   string `json:"level"`    // class level name or "all"
	ClassID string `json:"class_id"` // class id, "all" or empty
}

// GenerateBatch creates invoices for every student in the selected cohort.
// Re-running the same batch skips students already invoiced for the period.
func (ic *InvoiceController) GenerateBatch(c *fiber.Ctx) error {
	var req GenerateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := finance.NewGeneratorService().GenerateBatch(req.YearID, req.Term, req.Level, req.ClassID)
	if err != nil {
		return respondServiceError(c, err)
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "GENERATE_BATCH", "invoices", 0, fiber.Map{
		"year_id": req.YearID,
		"term":    req.Term,
		"level":   req.Level,
		"created": result.Created,
		"skipped": result.Skipped,
	})

	return c.JSON(fiber.Map{
		"message": "Invoice generation completed",
		"result":  result,
	})
}

// VoidInvoiceRequest carries the reason for voiding
type VoidInvoiceRequest struct {
	Reason string `json:"reason"`
}

// VoidInvoice writes an offsetting credit for the full billed amount.
// Invoices with payment history are never deleted.
func (ic *InvoiceController) VoidInvoice(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid invoice ID"})
	}

	var req VoidInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	approvedBy := user.ID

	adjustment, err := finance.NewAdjustmentService().VoidInvoice(id, req.Reason, &approvedBy)
	if err != nil {
		return respondServiceError(c, err)
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "VOID", "invoices", id, fiber.Map{"reason": req.Reason})

	return c.JSON(fiber.Map{
		"message":    "Invoice voided",
		"adjustment": adjustment,
	})
}

// SyncAll recomputes every invoice's cached totals from source rows
func (ic *InvoiceController) SyncAll(c *fiber.Ctx) error {
	corrected, err := finance.NewReconcileService().SyncAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Reconciliation failed"})
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "SYNC_ALL", "invoices", 0, fiber.Map{"corrected": corrected})

	return c.JSON(fiber.Map{
		"message":   "Reconciliation completed",
		"corrected": corrected,
	})
}

// SendRemindersRequest selects invoices and channels
type SendRemindersRequest struct {
	SelectedIDs     []uint `json:"selected_ids"`
	MessageTemplate string `json:"message_template"`
	SendSMS         *bool  `json:"send_sms"`
	SendEmail       *bool  `json:"send_email"`
}

// channels resolves the per-channel toggles. Both default on when omitted.
func (r SendRemindersRequest) channels() (sms, email bool) {
	sms, email = true, true
	if r.SendSMS != nil {
		sms = *r.SendSMS
	}
	if r.SendEmail != nil {
		email = *r.SendEmail
	}
	return sms, email
}

// SendReminders dispatches fee reminders to guardians of the selected invoices
func (ic *InvoiceController) SendReminders(c *fiber.Ctx) error {
	var req SendRemindersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sendSMS, sendEmail := req.channels()

	svc := finance.NewReminderService(messaging.NewService(nil))
	result, err := svc.SendReminders(req.SelectedIDs, req.MessageTemplate, sendSMS, sendEmail)
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.LogActivity(c, "SEND_REMINDERS", "invoices", 0, fiber.Map{
		"selected":   len(req.SelectedIDs),
		"unknown":    result.Unknown,
		"sms_sent":   result.SMSSent,
		"email_sent": result.EmailSent,
	})

	return c.JSON(fiber.Map{
		"message": "Reminder dispatch completed",
		"result":  result,
	})
}

// dashboardStats is the cached dashboard payload
type dashboardStats struct {
	Currency         string                 `json:"currency"`
	TotalInvoiced    decimal.Decimal        `json:"totalInvoiced"`
	TotalCollected   decimal.Decimal        `json:"totalCollected"`
	TotalOutstanding decimal.Decimal        `json:"totalOutstanding"`
	CollectionRate   decimal.Decimal        `json:"collectionRate"` // percent
	DailyCollection  decimal.Decimal        `json:"dailyCollection"`
	TotalCapacity    int64                  `json:"totalCapacity"`
	EnrolledStudents int64                  `json:"enrolledStudents"`
	RevenuePerSeat   decimal.Decimal        `json:"revenuePerSeat"`
	InvoicesByStatus map[string]int64       `json:"invoicesByStatus"`
	RecentInvoices   []recentInvoice        `json:"recentInvoices"`
	Context          dashboardPeriodContext `json:"context"`
	GeneratedAt      time.Time              `json:"generated_at"`
	Cached           bool                   `json:"cached"`
}

type dashboardPeriodContext struct {
	YearID   uint   `json:"year_id"`
	TermNum  int    `json:"term_num"`
	Year     string `json:"year"`
	TermName string `json:"term_name"`
}

type recentInvoice struct {
	ID              uint            `json:"id"`
	StudentName     string          `json:"student_name"`
	AdmissionNumber string          `json:"admission_number"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Balance         decimal.Decimal `json:"balance"`
	Status          string          `json:"status"`
	DateGenerated   time.Time       `json:"date_generated"`
}

// GetDashboardStats returns aggregate collection figures. The payload is
// cached in Redis; mutations to the ledger invalidate it.
func (ic *InvoiceController) GetDashboardStats(c *fiber.Ctx) error {
	rc := database.GetRedisClient()
	ctx := context.Background()

	if rc != nil {
		if cached, err := rc.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats dashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				stats.Cached = true
				return c.JSON(stats)
			}
		}
	}

	stats, err := buildDashboardStats()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active academic year"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to compute dashboard stats"})
	}

	if rc != nil {
		if payload, err := json.Marshal(stats); err == nil {
			rc.Set(ctx, dashboardCacheKey, payload, config.AppConfig.DashboardCacheTTL)
		}
	}

	return c.JSON(stats)
}

// buildDashboardStats aggregates collection figures for the active year+term
func buildDashboardStats() (*dashboardStats, error) {
	stats := &dashboardStats{
		Currency:         config.AppConfig.CurrencyCode,
		InvoicesByStatus: map[string]int64{},
		RecentInvoices:   []recentInvoice{},
		GeneratedAt:      time.Now(),
	}

	var year models.AcademicYear
	if err := database.DB.Where("is_active = ?", true).First(&year).Error; err != nil {
		return nil, err
	}
	stats.Context.YearID = year.ID
	stats.Context.Year = year.Name

	var term models.Term
	if err := database.DB.Where("academic_year_id = ? AND is_active = ?", year.ID, true).
		First(&term).Error; err == nil {
		stats.Context.TermNum = term.Number
		stats.Context.TermName = term.Name
	}

	periodScope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("academic_year_id = ?", year.ID)
		if stats.Context.TermNum > 0 {
			q = q.Where("term = ?", stats.Context.TermNum)
		}
		return q
	}

	type sums struct {
		Invoiced    decimal.Decimal
		Collected   decimal.Decimal
		Outstanding decimal.Decimal
	}
	var s sums
	err := periodScope(database.DB.Model(&models.Invoice{})).
		Select("COALESCE(SUM(total_amount),0) AS invoiced, COALESCE(SUM(paid_amount),0) AS collected, COALESCE(SUM(balance),0) AS outstanding").
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	stats.TotalInvoiced = s.Invoiced
	stats.TotalCollected = s.Collected
	stats.TotalOutstanding = s.Outstanding

	if s.Invoiced.IsPositive() {
		stats.CollectionRate = s.Collected.Div(s.Invoiced).Mul(decimal.NewFromInt(100)).Round(2)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := periodScope(database.DB.Model(&models.Invoice{})).
		Select("status, COUNT(*) AS count").
		Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, sc := range counts {
		stats.InvoicesByStatus[sc.Status] = sc.Count
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := database.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount),0)").
		Where("date_received >= ?", dayStart).
		Scan(&stats.DailyCollection).Error; err != nil {
		return nil, err
	}

	if err := database.DB.Model(&models.SchoolClass{}).
		Select("COALESCE(SUM(capacity),0)").
		Scan(&stats.TotalCapacity).Error; err != nil {
		return nil, err
	}
	if err := database.DB.Model(&models.Student{}).
		Where("is_active = ?", true).
		Count(&stats.EnrolledStudents).Error; err != nil {
		return nil, err
	}
	if stats.TotalCapacity > 0 {
		stats.RevenuePerSeat = s.Collected.Div(decimal.NewFromInt(stats.TotalCapacity)).Round(2)
	}

	var recent []models.Invoice
	if err := periodScope(database.DB.Model(&models.Invoice{})).
		Preload("Student").
		Order("id DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, err
	}
	for _, inv := range recent {
		stats.RecentInvoices = append(stats.RecentInvoices, recentInvoice{
			ID:              inv.ID,
			StudentName:     inv.Student.FullName,
			AdmissionNumber: inv.Student.AdmissionNumber,
			TotalAmount:     inv.TotalAmount,
			Balance:         inv.Balance,
			Status:          inv.Status,
			DateGenerated:   inv.DateGenerated,
		})
	}

	return stats, nil
}

// invalidateDashboardCache drops the cached dashboard payload after a mutation
func invalidateDashboardCache() {
	rc := database.GetRedisClient()
	if rc == nil {
		return
	}
	if err := rc.Del(context.Background(), dashboardCacheKey).Err(); err != nil {
		logrus.WithError(err).Warn("failed to invalidate dashboard cache")
	}
}
