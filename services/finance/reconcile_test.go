package finance

import (
	"testing"

	"shulebook_go/models"
	"shulebook_go/services/ledger"

	"github.com/shopspring/decimal"
)

func amt(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// A reconciliation pass corrects drifted cached columns; running it again
// immediately finds nothing to change.
func TestRecomputeSecondPassChangesNothing(t *testing.T) {
	inv := &models.Invoice{
		Items:    []models.InvoiceItem{{Amount: amt("15000")}, {Amount: amt("1500")}},
		Payments: []models.Payment{{Amount: amt("5000")}},
		Adjustments: []models.Adjustment{
			{AdjustmentType: models.AdjustmentCredit, Amount: amt("500")},
		},
	}

	if !ledger.Apply(inv, ledger.ComputeInvoice(inv)) {
		t.Fatalf("first pass should correct the zeroed cached columns")
	}
	if !inv.TotalAmount.Equal(amt("16000")) || !inv.Balance.Equal(amt("11000")) {
		t.Fatalf("unexpected derived totals: total=%s balance=%s", inv.TotalAmount, inv.Balance)
	}
	if inv.Status != models.InvoiceStatusPartial {
		t.Fatalf("expected PARTIAL, got %s", inv.Status)
	}

	if ledger.Apply(inv, ledger.ComputeInvoice(inv)) {
		t.Fatalf("second pass should find nothing to correct")
	}
}

// Paid amount is derived from all payment rows, so two payments landing in
// either order produce the same totals once both rows exist.
func TestPaymentsAccumulateRegardlessOfOrder(t *testing.T) {
	items := []models.InvoiceItem{{Amount: amt("10000")}}
	a := models.Payment{Amount: amt("4000")}
	b := models.Payment{Amount: amt("6000")}

	first := ledger.Compute(items, nil, []models.Payment{a, b})
	second := ledger.Compute(items, nil, []models.Payment{b, a})

	if !first.PaidAmount.Equal(amt("10000")) {
		t.Fatalf("expected both payments in paid amount, got %s", first.PaidAmount)
	}
	if first.Status != models.InvoiceStatusPaid {
		t.Fatalf("expected PAID, got %s", first.Status)
	}
	if !first.PaidAmount.Equal(second.PaidAmount) || !first.Balance.Equal(second.Balance) || first.Status != second.Status {
		t.Fatalf("payment order changed the outcome: %+v vs %+v", first, second)
	}
}
