package ledger

import (
	"testing"

	"shulebook_go/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func items(amounts ...string) []models.InvoiceItem {
	out := make([]models.InvoiceItem, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, models.InvoiceItem{Amount: dec(a)})
	}
	return out
}

func payments(amounts ...string) []models.Payment {
	out := make([]models.Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, models.Payment{Amount: dec(a)})
	}
	return out
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		items       []models.InvoiceItem
		adjustments []models.Adjustment
		payments    []models.Payment
		expTotal    string
		expPaid     string
		expBalance  string
		expStatus   string
	}{
		{
			name:       "fresh invoice is unpaid",
			items:      items("10000"),
			expTotal:   "10000",
			expPaid:    "0",
			expBalance: "10000",
			expStatus:  models.InvoiceStatusUnpaid,
		},
		{
			name:       "partial payment",
			items:      items("10000"),
			payments:   payments("4000"),
			expTotal:   "10000",
			expPaid:    "4000",
			expBalance: "6000",
			expStatus:  models.InvoiceStatusPartial,
		},
		{
			name:  "credit adjustment plus exact payment clears the bill",
			items: items("6000", "4000"),
			adjustments: []models.Adjustment{
				{AdjustmentType: models.AdjustmentCredit, Amount: dec("2000")},
			},
			payments:   payments("8000"),
			expTotal:   "8000",
			expPaid:    "8000",
			expBalance: "0",
			expStatus:  models.InvoiceStatusPaid,
		},
		{
			name:  "extra payment goes overpaid",
			items: items("10000"),
			adjustments: []models.Adjustment{
				{AdjustmentType: models.AdjustmentCredit, Amount: dec("2000")},
			},
			payments:   payments("8000", "500"),
			expTotal:   "8000",
			expPaid:    "8500",
			expBalance: "-500",
			expStatus:  models.InvoiceStatusOverpaid,
		},
		{
			name:  "debit adjustment increases the amount owed",
			items: items("5000"),
			adjustments: []models.Adjustment{
				{AdjustmentType: models.AdjustmentDebit, Amount: dec("350")},
			},
			payments:   payments("5000"),
			expTotal:   "5350",
			expPaid:    "5000",
			expBalance: "350",
			expStatus:  models.InvoiceStatusPartial,
		},
		{
			name:       "empty invoice has nothing owed",
			expTotal:   "0",
			expPaid:    "0",
			expBalance: "0",
			expStatus:  models.InvoiceStatusPaid,
		},
		{
			name:  "full waiver leaves a zero balance",
			items: items("7500"),
			adjustments: []models.Adjustment{
				{AdjustmentType: models.AdjustmentCredit, Amount: dec("7500")},
			},
			expTotal:   "0",
			expPaid:    "0",
			expBalance: "0",
			expStatus:  models.InvoiceStatusPaid,
		},
		{
			name:       "decimal cents survive the computation",
			items:      items("1000.50", "250.25"),
			payments:   payments("1250.74"),
			expTotal:   "1250.75",
			expPaid:    "1250.74",
			expBalance: "0.01",
			expStatus:  models.InvoiceStatusPartial,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.items, tc.adjustments, tc.payments)
			if !got.TotalAmount.Equal(dec(tc.expTotal)) {
				t.Fatalf("total: expected %s, got %s", tc.expTotal, got.TotalAmount)
			}
			if !got.PaidAmount.Equal(dec(tc.expPaid)) {
				t.Fatalf("paid: expected %s, got %s", tc.expPaid, got.PaidAmount)
			}
			if !got.Balance.Equal(dec(tc.expBalance)) {
				t.Fatalf("balance: expected %s, got %s", tc.expBalance, got.Balance)
			}
			if got.Status != tc.expStatus {
				t.Fatalf("status: expected %s, got %s", tc.expStatus, got.Status)
			}
		})
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	its := items("10000")
	adjs := []models.Adjustment{{AdjustmentType: models.AdjustmentCredit, Amount: dec("2000")}}
	pays := payments("8000")

	first := Compute(its, adjs, pays)
	second := Compute(its, adjs, pays)

	if !first.Balance.Equal(second.Balance) || first.Status != second.Status {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestBalanceAlwaysTotalMinusPaid(t *testing.T) {
	// Append payments one by one; the invariant must hold after every step.
	inv := &models.Invoice{Items: items("12000")}
	steps := []string{"3000", "4000", "5000", "500"}

	for _, amt := range steps {
		inv.Payments = append(inv.Payments, models.Payment{Amount: dec(amt)})
		got := ComputeInvoice(inv)
		if !got.Balance.Equal(got.TotalAmount.Sub(got.PaidAmount)) {
			t.Fatalf("invariant broken after payment %s: %+v", amt, got)
		}
	}

	final := ComputeInvoice(inv)
	if final.Status != models.InvoiceStatusOverpaid {
		t.Fatalf("expected OVERPAID after %s paid of %s, got %s", final.PaidAmount, final.TotalAmount, final.Status)
	}
}

func TestApplyReportsChange(t *testing.T) {
	inv := &models.Invoice{Items: items("10000")}
	totals := ComputeInvoice(inv)

	if !Apply(inv, totals) {
		t.Fatalf("expected first apply to report a change")
	}
	if Apply(inv, totals) {
		t.Fatalf("expected second apply to be a no-op")
	}
}
