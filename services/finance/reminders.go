package finance

import (
	"fmt"
	"strings"

	"shulebook_go/config"
	"shulebook_go/database"
	"shulebook_go/models"
	"shulebook_go/services/ledger"
	"shulebook_go/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Messenger is the slice of the messaging collaborator the dispatcher needs.
type Messenger interface {
	SendSMS(phone, body string) error
	SendEmail(email, subject, body string) error
}

// ReminderService renders and hands off fee reminders for outstanding invoices.
type ReminderService struct {
	db        *gorm.DB
	messenger Messenger
}

func NewReminderService(m Messenger) *ReminderService {
	return &ReminderService{db: database.GetDB(), messenger: m}
}

// ReminderResult counts what happened per channel.
type ReminderResult struct {
	SMSSent      int    `json:"sms_sent"`
	SMSSkipped   int    `json:"sms_skipped"` // guardian has no phone
	SMSFailed    int    `json:"sms_failed"`
	EmailSent    int    `json:"email_sent"`
	EmailSkipped int    `json:"email_skipped"` // guardian has no email
	EmailFailed  int    `json:"email_failed"`
	Excluded     int    `json:"excluded"` // balance cleared between selection and dispatch
	Unknown      int    `json:"unknown"`  // selected ids that match no invoice
	UnknownIDs   []uint `json:"unknown_ids,omitempty"`
}

// SendReminders dispatches a reminder for each selected invoice that still
// carries a positive balance. The balance is re-derived from source rows at
// dispatch time, so an invoice paid off after selection is excluded and
// counted. Selected ids that match no invoice are reported back, never
// silently dropped. Missing guardian contact skips that channel only; a
// gateway failure is counted and the loop continues.
func (s *ReminderService) SendReminders(invoiceIDs []uint, template string, sendSMS, sendEmail bool) (*ReminderResult, error) {
	if len(invoiceIDs) == 0 {
		return nil, validationf("no invoices selected")
	}

	var invoices []models.Invoice
	err := s.db.Preload("Student").
		Preload("Items").Preload("Adjustments").Preload("Payments").
		Where("id IN ?", invoiceIDs).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	result := s.dispatch(invoices, template, sendSMS, sendEmail)
	result.UnknownIDs = missingInvoiceIDs(invoiceIDs, invoices)
	result.Unknown = len(result.UnknownIDs)
	return result, nil
}

// dispatch renders and hands off one reminder per loaded invoice.
func (s *ReminderService) dispatch(invoices []models.Invoice, template string, sendSMS, sendEmail bool) *ReminderResult {
	result := &ReminderResult{}
	for i := range invoices {
		inv := &invoices[i]

		totals := ledger.ComputeInvoice(inv)
		if !totals.Balance.IsPositive() {
			result.Excluded++
			continue
		}

		msg := RenderReminder(template, inv.Student.FullName, totals.Balance)

		if sendSMS {
			if inv.Student.GuardianPhone == "" {
				result.SMSSkipped++
			} else if err := s.messenger.SendSMS(inv.Student.GuardianPhone, msg); err != nil {
				result.SMSFailed++
				logrus.WithError(err).WithField("invoice_id", inv.ID).Warn("reminder SMS handoff failed")
			} else {
				result.SMSSent++
			}
		}

		if sendEmail {
			if inv.Student.GuardianEmail == "" {
				result.EmailSkipped++
			} else if err := s.messenger.SendEmail(inv.Student.GuardianEmail, "Fee Reminder: "+inv.Student.FullName, msg); err != nil {
				result.EmailFailed++
				logrus.WithError(err).WithField("invoice_id", inv.ID).Warn("reminder email handoff failed")
			} else {
				result.EmailSent++
			}
		}
	}

	return result
}

// missingInvoiceIDs returns the requested ids that matched no invoice row,
// preserving request order and collapsing duplicates.
func missingInvoiceIDs(requested []uint, found []models.Invoice) []uint {
	loaded := make(map[uint]bool, len(found))
	for _, inv := range found {
		loaded[inv.ID] = true
	}

	var missing []uint
	seen := make(map[uint]bool, len(requested))
	for _, id := range requested {
		if !loaded[id] && !seen[id] {
			seen[id] = true
			missing = append(missing, id)
		}
	}
	return missing
}

// RenderReminder substitutes {student_name} and {balance} into the template.
// The balance is formatted with thousands separators. An empty template falls
// back to the standard reminder wording.
func RenderReminder(template, studentName string, balance decimal.Decimal) string {
	formatted := utils.FormatMoney(balance)
	if strings.TrimSpace(template) == "" {
		return fmt.Sprintf(
			"Dear Parent, this is a reminder regarding %s's outstanding fee balance of %s %s. Please settle as soon as possible.",
			studentName, currencyCode(), formatted)
	}
	msg := strings.ReplaceAll(template, "{student_name}", studentName)
	return strings.ReplaceAll(msg, "{balance}", formatted)
}

func currencyCode() string {
	if config.AppConfig != nil && config.AppConfig.CurrencyCode != "" {
		return config.AppConfig.CurrencyCode
	}
	return "KES"
}
