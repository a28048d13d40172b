package finance

import (
	"errors"
	"strings"
	"testing"

	"shulebook_go/models"

	"github.com/shopspring/decimal"
)

type fakeMessenger struct {
	smsTo    []string
	emailTo  []string
	smsErr   error
	emailErr error
}

func (f *fakeMessenger) SendSMS(phone, body string) error {
	if f.smsErr != nil {
		return f.smsErr
	}
	f.smsTo = append(f.smsTo, phone)
	return nil
}

func (f *fakeMessenger) SendEmail(email, subject, body string) error {
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emailTo = append(f.emailTo, email)
	return nil
}

func TestDispatchExcludesClearedBalances(t *testing.T) {
	fee := decimal.NewFromInt(10000)
	owing := models.Invoice{
		BaseModel: models.BaseModel{ID: 1},
		Student: models.Student{
			FullName:      "Wanjiku Kamau",
			GuardianPhone: "+254700000001",
			GuardianEmail: "guardian1@example.com",
		},
		Items: []models.InvoiceItem{{Amount: fee}},
	}
	// Paid off after selection: the re-derived balance is zero.
	cleared := models.Invoice{
		BaseModel: models.BaseModel{ID: 2},
		Student: models.Student{
			FullName:      "Baraka Otieno",
			GuardianPhone: "+254700000002",
		},
		Items:    []models.InvoiceItem{{Amount: fee}},
		Payments: []models.Payment{{Amount: fee}},
	}

	fm := &fakeMessenger{}
	svc := &ReminderService{messenger: fm}

	result := svc.dispatch([]models.Invoice{owing, cleared}, "", true, true)

	if result.Excluded != 1 {
		t.Fatalf("expected 1 excluded invoice, got %d", result.Excluded)
	}
	if result.SMSSent != 1 || len(fm.smsTo) != 1 || fm.smsTo[0] != "+254700000001" {
		t.Fatalf("expected one SMS to the owing guardian, got %d (%v)", result.SMSSent, fm.smsTo)
	}
	if result.EmailSent != 1 || len(fm.emailTo) != 1 {
		t.Fatalf("expected one email to the owing guardian, got %d (%v)", result.EmailSent, fm.emailTo)
	}
}

func TestDispatchChannelSkipsAndFailures(t *testing.T) {
	fee := decimal.NewFromInt(5000)
	noPhone := models.Invoice{
		BaseModel: models.BaseModel{ID: 3},
		Student:   models.Student{FullName: "Achieng Odhiambo", GuardianEmail: "guardian3@example.com"},
		Items:     []models.InvoiceItem{{Amount: fee}},
	}

	t.Run("missing phone skips SMS only", func(t *testing.T) {
		fm := &fakeMessenger{}
		svc := &ReminderService{messenger: fm}
		result := svc.dispatch([]models.Invoice{noPhone}, "", true, true)
		if result.SMSSkipped != 1 || result.SMSSent != 0 {
			t.Fatalf("expected SMS skipped, got %+v", result)
		}
		if result.EmailSent != 1 {
			t.Fatalf("expected email still sent, got %+v", result)
		}
	})

	t.Run("gateway failure is counted and the loop continues", func(t *testing.T) {
		withPhone := noPhone
		withPhone.Student.GuardianPhone = "+254700000003"
		fm := &fakeMessenger{smsErr: errors.New("gateway down")}
		svc := &ReminderService{messenger: fm}
		result := svc.dispatch([]models.Invoice{withPhone}, "", true, true)
		if result.SMSFailed != 1 {
			t.Fatalf("expected SMS failure counted, got %+v", result)
		}
		if result.EmailSent != 1 {
			t.Fatalf("expected email unaffected by SMS failure, got %+v", result)
		}
	})
}

func TestMissingInvoiceIDs(t *testing.T) {
	found := []models.Invoice{
		{BaseModel: models.BaseModel{ID: 2}},
		{BaseModel: models.BaseModel{ID: 5}},
	}

	missing := missingInvoiceIDs([]uint{1, 2, 3, 3, 5}, found)
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Fatalf("expected missing ids [1 3], got %v", missing)
	}

	if got := missingInvoiceIDs([]uint{2, 5}, found); len(got) != 0 {
		t.Fatalf("expected no missing ids, got %v", got)
	}
}

func TestRenderReminder(t *testing.T) {
	balance := decimal.NewFromInt(12500)

	t.Run("substitutes placeholders", func(t *testing.T) {
		got := RenderReminder("Hello {student_name}, you owe {balance}.", "Wanjiku Kamau", balance)
		want := "Hello Wanjiku Kamau, you owe 12,500."
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("empty template falls back to default wording", func(t *testing.T) {
		got := RenderReminder("", "Wanjiku Kamau", balance)
		if !strings.Contains(got, "Wanjiku Kamau") || !strings.Contains(got, "12,500") {
			t.Fatalf("default template missing substitutions: %q", got)
		}
	})

	t.Run("repeated placeholders all replaced", func(t *testing.T) {
		got := RenderReminder("{student_name}: {balance} ({balance})", "A", decimal.NewFromInt(1000))
		if strings.Contains(got, "{balance}") || strings.Contains(got, "{student_name}") {
			t.Fatalf("unreplaced placeholder in %q", got)
		}
	})

	t.Run("template without placeholders passes through", func(t *testing.T) {
		got := RenderReminder("Pay your fees.", "A", balance)
		if got != "Pay your fees." {
			t.Fatalf("expected passthrough, got %q", got)
		}
	})
}
