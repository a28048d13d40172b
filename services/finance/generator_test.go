package finance

import (
	"errors"
	"fmt"
	"testing"

	"shulebook_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func classPtr(id uint) *uint { return &id }

func TestFeeAppliesTo(t *testing.T) {
	amount := decimal.NewFromInt(10000)

	tests := []struct {
		name    string
		fee     models.FeeStructure
		student models.Student
		want    bool
	}{
		{
			name:    "global fee hits everyone",
			fee:     models.FeeStructure{Name: "Tuition Fee", Amount: amount},
			student: models.Student{Category: "DAY"},
			want:    true,
		},
		{
			name:    "class fee hits matching class",
			fee:     models.FeeStructure{Name: "Lab Fee", Amount: amount, ClassID: classPtr(3)},
			student: models.Student{Category: "DAY", CurrentClassID: classPtr(3)},
			want:    true,
		},
		{
			name:    "class fee skips other classes",
			fee:     models.FeeStructure{Name: "Lab Fee", Amount: amount, ClassID: classPtr(3)},
			student: models.Student{Category: "DAY", CurrentClassID: classPtr(4)},
			want:    false,
		},
		{
			name:    "class fee skips students without a class",
			fee:     models.FeeStructure{Name: "Lab Fee", Amount: amount, ClassID: classPtr(3)},
			student: models.Student{Category: "DAY"},
			want:    false,
		},
		{
			name:    "boarding fee skips day scholars",
			fee:     models.FeeStructure{Name: "Boarding Fee", Amount: amount},
			student: models.Student{Category: "DAY"},
			want:    false,
		},
		{
			name:    "boarding fee bills boarders",
			fee:     models.FeeStructure{Name: "Boarding Fee", Amount: amount},
			student: models.Student{Category: "BOARDING"},
			want:    true,
		},
		{
			name:    "hostel levy counts as boarding",
			fee:     models.FeeStructure{Name: "Hostel Maintenance Levy", Amount: amount},
			student: models.Student{Category: "DAY"},
			want:    false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := FeeAppliesTo(tc.fee, &tc.student); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestRerunTreatsDuplicatePeriodAsSkip(t *testing.T) {
	if !isAlreadyInvoiced(gorm.ErrDuplicatedKey) {
		t.Fatalf("a duplicate-key conflict must count as already invoiced")
	}
	if !isAlreadyInvoiced(fmt.Errorf("create invoice: %w", gorm.ErrDuplicatedKey)) {
		t.Fatalf("a wrapped duplicate-key conflict must count as already invoiced")
	}
	if isAlreadyInvoiced(errors.New("connection reset")) {
		t.Fatalf("an unrelated failure must surface, not be swallowed as a skip")
	}
	if isAlreadyInvoiced(nil) {
		t.Fatalf("nil error is not a duplicate")
	}
}

func TestIsBoardingFee(t *testing.T) {
	boarding := []string{"Boarding Fee", "boarding (annex)", "Hostel Levy", "BOARD AND LODGING"}
	for _, name := range boarding {
		if !IsBoardingFee(name) {
			t.Fatalf("expected %q to be a boarding fee", name)
		}
	}
	other := []string{"Tuition Fee", "Transport Zone A", "Lunch"}
	for _, name := range other {
		if IsBoardingFee(name) {
			t.Fatalf("did not expect %q to be a boarding fee", name)
		}
	}
}
