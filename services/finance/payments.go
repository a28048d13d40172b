package finance

import (
	"strings"
	"time"

	"shulebook_go/database"
	"shulebook_go/models"
	"shulebook_go/services/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService records payments against invoices.
type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService() *PaymentService {
	return &PaymentService{db: database.GetDB()}
}

// ApplyPaymentInput carries one incoming payment.
type ApplyPaymentInput struct {
	InvoiceID       uint
	Amount          decimal.Decimal
	Method          string
	ReferenceNumber string
	DateReceived    *time.Time
	ReceivedByID    *uint
	Notes           string
}

// ValidatePayment enforces the synchronous preconditions: a positive amount,
// a known method, and a reference number for MPESA/BANK payments.
func ValidatePayment(amount decimal.Decimal, method, reference string) error {
	if !amount.IsPositive() {
		return validationf("amount must be greater than zero")
	}
	switch method {
	case models.PaymentMethodCash:
		return nil
	case models.PaymentMethodMpesa, models.PaymentMethodBank:
		if strings.TrimSpace(reference) == "" {
			return validationf("reference_number is required for %s payments", method)
		}
		return nil
	default:
		return validationf("unknown payment method %q", method)
	}
}

// ApplyPayment appends a payment row and refreshes the invoice's derived
// fields in one transaction. The invoice row is locked for the duration, so
// two concurrent payments against the same invoice serialize and both land
// in the final paid_amount.
//
// Overpaying is allowed: the balance goes negative and the status becomes
// OVERPAID (credit carried forward).
func (s *PaymentService) ApplyPayment(in ApplyPaymentInput) (*models.Payment, error) {
	if err := ValidatePayment(in.Amount, in.Method, in.ReferenceNumber); err != nil {
		return nil, err
	}

	reference := strings.TrimSpace(in.ReferenceNumber)
	received := time.Now()
	if in.DateReceived != nil {
		received = *in.DateReceived
	}

	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, in.InvoiceID).Error; err != nil {
			return err
		}

		// A gateway push can arrive twice; the reference number is the
		// dedup key for MPESA/BANK.
		if reference != "" && in.Method != models.PaymentMethodCash {
			var count int64
			if err := tx.Model(&models.Payment{}).
				Where("method = ? AND reference_number = ?", in.Method, reference).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return validationf("a payment with this %s reference already exists", in.Method)
			}
		}

		payment = models.Payment{
			InvoiceID:       inv.ID,
			Amount:          in.Amount,
			Method:          in.Method,
			ReferenceNumber: reference,
			DateReceived:    received,
			ReceivedByID:    in.ReceivedByID,
			Notes:           in.Notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		_, err := recomputeInvoice(tx, &inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// recomputeInvoice re-derives the cached columns from the source rows and
// persists them, reporting whether anything actually changed. Must run
// inside the transaction that holds the row lock.
func recomputeInvoice(tx *gorm.DB, inv *models.Invoice) (bool, error) {
	if err := tx.Where("invoice_id = ?", inv.ID).Find(&inv.Items).Error; err != nil {
		return false, err
	}
	if err := tx.Where("invoice_id = ?", inv.ID).Find(&inv.Adjustments).Error; err != nil {
		return false, err
	}
	if err := tx.Where("invoice_id = ?", inv.ID).Find(&inv.Payments).Error; err != nil {
		return false, err
	}

	if !ledger.Apply(inv, ledger.ComputeInvoice(inv)) {
		return false, nil
	}
	return true, tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).
		Updates(map[string]interface{}{
			"total_amount": inv.TotalAmount,
			"paid_amount":  inv.PaidAmount,
			"balance":      inv.Balance,
			"status":       inv.Status,
		}).Error
}
