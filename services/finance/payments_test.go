package finance

import (
	"errors"
	"testing"

	"shulebook_go/models"

	"github.com/shopspring/decimal"
)

func TestValidatePayment(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		method    string
		reference string
		wantErr   bool
	}{
		{name: "cash needs no reference", amount: "500", method: models.PaymentMethodCash, wantErr: false},
		{name: "mpesa with reference", amount: "500", method: models.PaymentMethodMpesa, reference: "SFK3X9QT21", wantErr: false},
		{name: "bank with reference", amount: "12000", method: models.PaymentMethodBank, reference: "TRF-0042", wantErr: false},
		{name: "mpesa without reference rejected", amount: "500", method: models.PaymentMethodMpesa, reference: "", wantErr: true},
		{name: "bank with blank reference rejected", amount: "500", method: models.PaymentMethodBank, reference: "   ", wantErr: true},
		{name: "zero amount rejected", amount: "0", method: models.PaymentMethodCash, wantErr: true},
		{name: "negative amount rejected", amount: "-100", method: models.PaymentMethodCash, wantErr: true},
		{name: "unknown method rejected", amount: "500", method: "CHEQUE", reference: "CHQ-1", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			if err != nil {
				t.Fatalf("bad test amount %q: %v", tc.amount, err)
			}
			err = ValidatePayment(amount, tc.method, tc.reference)
			if tc.wantErr && err == nil {
				t.Fatalf("expected a validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateAdjustment(t *testing.T) {
	if err := ValidateAdjustment(models.AdjustmentCredit, decimal.NewFromInt(2000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateAdjustment(models.AdjustmentDebit, decimal.NewFromInt(350)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateAdjustment("REFUND", decimal.NewFromInt(100)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}
	if err := ValidateAdjustment(models.AdjustmentCredit, decimal.Zero); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}
}
