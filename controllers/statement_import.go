package controllers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shulebook_go/database"
	"shulebook_go/middleware"
	"shulebook_go/models"
	"shulebook_go/services/finance"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// StatementImportController imports bank / M-Pesa settlement statements and
// posts each row as a payment against the student's latest invoice.
type StatementImportController struct{}

// POST /api/import/statement
// Multipart form with file field: file. Optional "method" field (MPESA|BANK),
// defaults to MPESA.
func (sc *StatementImportController) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	method := strings.ToUpper(strings.TrimSpace(c.FormValue("method", models.PaymentMethodMpesa)))
	if method != models.PaymentMethodMpesa && method != models.PaymentMethodBank {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "method must be MPESA or BANK"})
	}

	// Read rows
	var rows [][]string
	filename := strings.ToLower(fh.Filename)
	switch {
	case strings.HasSuffix(filename, ".csv"):
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
		}
		defer f.Close()
		rows, err = readCSVRows(f)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	case strings.HasSuffix(filename, ".xlsx") || strings.HasSuffix(filename, ".xls"):
		tmpDir, _ := os.MkdirTemp("", "sb-statement-")
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_upload.xlsx", time.Now().UnixNano()))
		if err := c.SaveFile(fh, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		var rerr error
		rows, rerr = readXLSXRows(tmp)
		_ = os.Remove(tmp)
		if rerr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": rerr.Error()})
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv,xlsx)"})
	}

	if len(rows) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file has no data rows"})
	}

	col := mapStatementHeader(rows[0])
	for _, required := range []string{"admission_number", "amount", "reference"} {
		if _, ok := col[required]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing column: " + required})
		}
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	receivedBy := user.ID

	svc := finance.NewPaymentService()
	posted := 0
	duplicates := 0
	failed := 0
	errorsList := []string{}

	for i := 1; i < len(rows); i++ {
		r := rows[i]
		get := func(key string) string {
			if idx, ok := col[key]; ok && idx < len(r) {
				return strings.TrimSpace(r[idx])
			}
			return ""
		}

		admission := get("admission_number")
		reference := get("reference")
		amount, err := decimal.NewFromString(strings.ReplaceAll(get("amount"), ",", ""))
		if err != nil {
			failed++
			errorsList = append(errorsList, fmt.Sprintf("row %d: bad amount %q", i+1, get("amount")))
			continue
		}

		invoiceID, err := latestInvoiceFor(admission)
		if err != nil {
			failed++
			errorsList = append(errorsList, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		received := parseStatementDate(get("date"))

		_, err = svc.ApplyPayment(finance.ApplyPaymentInput{
			InvoiceID:       invoiceID,
			Amount:          amount,
			Method:          method,
			ReferenceNumber: reference,
			DateReceived:    received,
			ReceivedByID:    &receivedBy,
			Notes:           "Imported from " + fh.Filename,
		})
		switch {
		case err == nil:
			posted++
		case errors.Is(err, finance.ErrValidation) && strings.Contains(err.Error(), "already exists"):
			// statement rows re-appear on overlapping exports
			duplicates++
		default:
			failed++
			errorsList = append(errorsList, fmt.Sprintf("row %d: %v", i+1, err))
		}
	}

	invalidateDashboardCache()
	middleware.LogActivity(c, "IMPORT", "payments", 0, fiber.Map{
		"file_name":  fh.Filename,
		"method":     method,
		"posted":     posted,
		"duplicates": duplicates,
		"failed":     failed,
	})

	return c.JSON(fiber.Map{
		"success":      true,
		"file_name":    fh.Filename,
		"data_rows":    len(rows) - 1,
		"posted":       posted,
		"duplicates":   duplicates,
		"failed":       failed,
		"errors_count": len(errorsList),
		"errors":       errorsList,
	})
}

// latestInvoiceFor resolves a student's most recent invoice by admission number
func latestInvoiceFor(admission string) (uint, error) {
	if admission == "" {
		return 0, fmt.Errorf("missing admission number")
	}

	var student models.Student
	if err := database.DB.Where("admission_number = ?", admission).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("unknown admission number %q", admission)
		}
		return 0, err
	}

	var invoice models.Invoice
	err := database.DB.Where("student_id = ?", student.ID).
		Order("academic_year_id DESC, term DESC, id DESC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("no invoice for admission number %q", admission)
		}
		return 0, err
	}
	return invoice.ID, nil
}

// mapStatementHeader normalizes header names to snake_case keys, so
// "Admission Number", "admission_number" and "ADMISSION NUMBER" all match.
func mapStatementHeader(header []string) map[string]int {
	m := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		key = strings.ReplaceAll(key, "-", "_")
		// common aliases
		switch key {
		case "admission_no", "adm_no", "account_number":
			key = "admission_number"
		case "ref", "reference_number", "transaction_id", "receipt_no":
			key = "reference"
		case "paid_in", "credit":
			key = "amount"
		case "completion_time", "transaction_date":
			key = "date"
		}
		if _, exists := m[key]; !exists {
			m[key] = i
		}
	}
	return m
}

func parseStatementDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	layouts := []string{"2006-01-02 15:04:05", "2006-01-02", "02/01/2006 15:04", "02/01/2006", "1/2/2006", time.RFC3339}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return &t
		}
	}
	return nil
}

func readCSVRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	return f.GetRows(sht)
}
