package finance

import (
	"strings"

	"shulebook_go/database"
	"shulebook_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdjustmentService appends credit/debit notes to invoices.
type AdjustmentService struct {
	db *gorm.DB
}

func NewAdjustmentService() *AdjustmentService {
	return &AdjustmentService{db: database.GetDB()}
}

// ApplyAdjustmentInput carries one credit or debit note.
type ApplyAdjustmentInput struct {
	InvoiceID      uint
	AdjustmentType string
	Amount         decimal.Decimal
	Reason         string
	ApprovedByID   *uint
	OriginModel    string
	OriginID       uint
}

// ValidateAdjustment checks type and amount before anything is written.
func ValidateAdjustment(adjustmentType string, amount decimal.Decimal) error {
	if adjustmentType != models.AdjustmentDebit && adjustmentType != models.AdjustmentCredit {
		return validationf("adjustment_type must be DEBIT or CREDIT")
	}
	if !amount.IsPositive() {
		return validationf("amount must be greater than zero")
	}
	return nil
}

// ApplyAdjustment appends the adjustment and refreshes the invoice under the
// same row lock used for payments.
func (s *AdjustmentService) ApplyAdjustment(in ApplyAdjustmentInput) (*models.Adjustment, error) {
	if err := ValidateAdjustment(in.AdjustmentType, in.Amount); err != nil {
		return nil, err
	}

	var adjustment models.Adjustment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, in.InvoiceID).Error; err != nil {
			return err
		}

		adjustment = models.Adjustment{
			InvoiceID:      inv.ID,
			AdjustmentType: in.AdjustmentType,
			Amount:         in.Amount,
			Reason:         strings.TrimSpace(in.Reason),
			ApprovedByID:   in.ApprovedByID,
			OriginModel:    in.OriginModel,
			OriginID:       in.OriginID,
		}
		if err := tx.Create(&adjustment).Error; err != nil {
			return err
		}

		_, err := recomputeInvoice(tx, &inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &adjustment, nil
}

// VoidInvoice soft-voids an invoice by writing a CREDIT for the full amount
// still billed. Invoices with payments are never hard-deleted; the offsetting
// credit preserves the audit trail while zeroing what is owed.
func (s *AdjustmentService) VoidInvoice(invoiceID uint, reason string, approvedByID *uint) (*models.Adjustment, error) {
	var adjustment models.Adjustment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, invoiceID).Error; err != nil {
			return err
		}

		if !inv.TotalAmount.IsPositive() {
			return validationf("invoice has nothing billed to void")
		}

		if reason == "" {
			reason = "Invoice voided"
		}
		adjustment = models.Adjustment{
			InvoiceID:      inv.ID,
			AdjustmentType: models.AdjustmentCredit,
			Amount:         inv.TotalAmount,
			Reason:         reason,
			ApprovedByID:   approvedByID,
		}
		if err := tx.Create(&adjustment).Error; err != nil {
			return err
		}

		_, err := recomputeInvoice(tx, &inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &adjustment, nil
}
