package finance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shulebook_go/database"
	"shulebook_go/models"
	"shulebook_go/services/ledger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CohortAll selects every active student / every class level.
const CohortAll = "all"

// GeneratorService batch-creates invoices from fee structures.
type GeneratorService struct {
	db *gorm.DB
}

func NewGeneratorService() *GeneratorService {
	return &GeneratorService{db: database.GetDB()}
}

// BatchResult is the user-facing outcome of a generation run.
type BatchResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// GenerateBatch creates one invoice per student in the cohort for the given
// year and term. Students already invoiced for that period are counted as
// skipped, never touched; re-running the same batch is a no-op for them.
// A failure for one student is recorded and the batch continues.
func (s *GeneratorService) GenerateBatch(yearID uint, term int, level, classID string) (*BatchResult, error) {
	if yearID == 0 {
		return nil, validationf("year_id is required")
	}
	if term < 1 || term > 3 {
		return nil, validationf("term must be 1, 2 or 3")
	}
	if strings.TrimSpace(level) == "" {
		return nil, validationf("level is required")
	}

	fees, err := s.loadFeeStructures(yearID, term, level, classID)
	if err != nil {
		return nil, err
	}
	if len(fees) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	students, err := s.resolveCohort(level, classID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for i := range students {
		student := &students[i]

		created, err := s.generateOne(student, yearID, term, fees)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.AdmissionNumber, err))
			logrus.WithError(err).WithField("student", student.AdmissionNumber).Warn("invoice generation failed for student")
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	logrus.WithFields(logrus.Fields{
		"year_id": yearID,
		"term":    term,
		"level":   level,
		"created": result.Created,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("invoice batch generation finished")

	return result, nil
}

func (s *GeneratorService) loadFeeStructures(yearID uint, term int, level, classID string) ([]models.FeeStructure, error) {
	q := s.db.Where("is_active = ? AND academic_year_id = ? AND term = ?", true, yearID, term)

	if level != CohortAll {
		if classID != "" && classID != CohortAll {
			q = q.Where("class_id = ? OR class_id IS NULL", classID)
		} else {
			q = q.Joins("LEFT JOIN school_classes ON school_classes.id = fee_structures.class_id").
				Where("school_classes.name = ? OR fee_structures.class_id IS NULL", level)
		}
	}

	var fees []models.FeeStructure
	if err := q.Find(&fees).Error; err != nil {
		return nil, err
	}
	return fees, nil
}

func (s *GeneratorService) resolveCohort(level, classID string) ([]models.Student, error) {
	q := s.db.Where("students.is_active = ?", true)

	if level != CohortAll {
		if classID != "" && classID != CohortAll {
			q = q.Where("students.current_class_id = ?", classID)
		} else {
			q = q.Joins("JOIN school_classes ON school_classes.id = students.current_class_id").
				Where("school_classes.name = ?", level)
		}
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

// generateOne creates a single invoice inside its own transaction.
// Returns (false, nil) when the student is skipped (already invoiced, or no
// applicable fees). The unique index on (student, year, term) backstops the
// exists check, so a concurrent batch run produces a swallowed conflict
// rather than a duplicate invoice.
func (s *GeneratorService) generateOne(student *models.Student, yearID uint, term int, fees []models.FeeStructure) (bool, error) {
	var existing models.Invoice
	err := s.db.Where("student_id = ? AND academic_year_id = ? AND term = ?", student.ID, yearID, term).
		First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	applicable := make([]models.FeeStructure, 0, len(fees))
	for _, fee := range fees {
		if FeeAppliesTo(fee, student) {
			applicable = append(applicable, fee)
		}
	}
	if len(applicable) == 0 {
		return false, nil
	}

	created := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		inv := models.Invoice{
			StudentID:      student.ID,
			AcademicYearID: yearID,
			Term:           term,
			Status:         models.InvoiceStatusUnpaid,
			DateGenerated:  time.Now(),
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}

		// Carry forward the most recent prior balance (arrears or credit).
		var prev models.Invoice
		err := tx.Where("student_id = ? AND id <> ?", student.ID, inv.ID).
			Order("academic_year_id DESC, term DESC, id DESC").
			First(&prev).Error
		if err == nil && !prev.Balance.IsZero() {
			desc := "Balance Brought Forward (Arrears)"
			if prev.Balance.IsNegative() {
				desc = "Overpayment Credit"
			}
			item := models.InvoiceItem{
				InvoiceID:   inv.ID,
				Description: desc,
				Amount:      prev.Balance,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			inv.Items = append(inv.Items, item)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		for _, fee := range applicable {
			feeID := fee.ID
			item := models.InvoiceItem{
				InvoiceID:      inv.ID,
				FeeStructureID: &feeID,
				Description:    fee.Name,
				Amount:         fee.Amount,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			inv.Items = append(inv.Items, item)
		}

		ledger.Apply(&inv, ledger.ComputeInvoice(&inv))
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
			Updates(map[string]interface{}{
				"total_amount": inv.TotalAmount,
				"paid_amount":  inv.PaidAmount,
				"balance":      inv.Balance,
				"status":       inv.Status,
			}).Error; err != nil {
			return err
		}

		created = true
		return nil
	})

	if err != nil {
		// Another batch run got there first; treat as already invoiced.
		if isAlreadyInvoiced(err) {
			return false, nil
		}
		return false, err
	}
	return created, nil
}

// isAlreadyInvoiced reports whether a create failed because the student
// already holds an invoice for the period. The unique index on
// (student, year, term) turns a concurrent or repeated run into this
// error instead of a duplicate invoice, so it counts as a skip.
func isAlreadyInvoiced(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FeeAppliesTo reports whether a fee structure row bills this student.
// Class-scoped fees only hit students in that class; level-agnostic rows
// (nil class) hit everyone. Boarding fees never bill day scholars.
func FeeAppliesTo(fee models.FeeStructure, student *models.Student) bool {
	if fee.ClassID != nil {
		if student.CurrentClassID == nil || *student.CurrentClassID != *fee.ClassID {
			return false
		}
	}
	if IsBoardingFee(fee.Name) && student.Category != "BOARDING" {
		return false
	}
	return true
}

// IsBoardingFee detects hostel/boarding charges by fee name.
func IsBoardingFee(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "board") || strings.Contains(n, "hostel")
}
