package ledger

import (
	"shulebook_go/models"

	"github.com/shopspring/decimal"
)

// Totals is the derived financial state of an invoice.
type Totals struct {
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Balance     decimal.Decimal
	Status      string
}

// Compute derives totals, balance and status from an invoice's source rows.
// Pure and idempotent: it is called on every write to refresh the cached
// columns and by the reconciliation job to detect drift.
//
//	total   = sum(items) + sum(DEBIT adjustments) - sum(CREDIT adjustments)
//	paid    = sum(payments)
//	balance = total - paid
func Compute(items []models.InvoiceItem, adjustments []models.Adjustment, payments []models.Payment) Totals {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	for _, adj := range adjustments {
		switch adj.AdjustmentType {
		case models.AdjustmentDebit:
			total = total.Add(adj.Amount)
		case models.AdjustmentCredit:
			total = total.Sub(adj.Amount)
		}
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	balance := total.Sub(paid)

	return Totals{
		TotalAmount: total,
		PaidAmount:  paid,
		Balance:     balance,
		Status:      statusFor(total, balance),
	}
}

// ComputeInvoice is a convenience wrapper over a loaded invoice.
func ComputeInvoice(inv *models.Invoice) Totals {
	return Compute(inv.Items, inv.Adjustments, inv.Payments)
}

// Apply writes the derived fields back onto the invoice struct.
// Returns true when any cached field changed.
func Apply(inv *models.Invoice, t Totals) bool {
	changed := !inv.TotalAmount.Equal(t.TotalAmount) ||
		!inv.PaidAmount.Equal(t.PaidAmount) ||
		!inv.Balance.Equal(t.Balance) ||
		inv.Status != t.Status

	inv.TotalAmount = t.TotalAmount
	inv.PaidAmount = t.PaidAmount
	inv.Balance = t.Balance
	inv.Status = t.Status
	return changed
}

// statusFor maps a balance to the closed status set.
// Overpayment is a legitimate state (credit carried forward), not an error.
func statusFor(total, balance decimal.Decimal) string {
	switch {
	case balance.IsNegative():
		return models.InvoiceStatusOverpaid
	case balance.IsZero():
		return models.InvoiceStatusPaid
	case balance.Equal(total) && total.IsPositive():
		return models.InvoiceStatusUnpaid
	default:
		return models.InvoiceStatusPartial
	}
}
