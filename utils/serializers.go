package utils

import (
	"time"

	"shulebook_go/models"

	"github.com/shopspring/decimal"
)

// Compact representations used across APIs
type StudentShort struct {
	ID              uint   `json:"id"`
	AdmissionNumber string `json:"admission_number"`
	FullName        string `json:"full_name"`
	Category        string `json:"category,omitempty"`
}

type InvoiceItemDTO struct {
	ID          uint            `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type AdjustmentDTO struct {
	ID             uint            `json:"id"`
	AdjustmentType string          `json:"adjustment_type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type PaymentDTO struct {
	ID              uint            `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	DateReceived    time.Time       `json:"date_received"`
}

type InvoiceDTO struct {
	ID               uint             `json:"id"`
	StudentID        uint             `json:"student_id"`
	StudentName      string           `json:"student_name"`
	AdmissionNumber  string           `json:"admission_number"`
	ClassName        string           `json:"class_name,omitempty"`
	StreamName       string           `json:"stream_name,omitempty"`
	Term             int              `json:"term"`
	AcademicYearName string           `json:"academic_year_name"`
	TotalAmount      decimal.Decimal  `json:"total_amount"`
	PaidAmount       decimal.Decimal  `json:"paid_amount"`
	Balance          decimal.Decimal  `json:"balance"`
	Status           string           `json:"status"`
	DateGenerated    time.Time        `json:"date_generated"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	Items            []InvoiceItemDTO `json:"items"`
	Adjustments      []AdjustmentDTO  `json:"adjustments"`
	Payments         []PaymentDTO     `json:"payments"`
}

// ToInvoiceDTO maps an invoice to its API representation.
// Assumptions: caller has preloaded Student (with CurrentClass), AcademicYear,
// Items, Adjustments and Payments.
func ToInvoiceDTO(inv models.Invoice) InvoiceDTO {
	dto := InvoiceDTO{
		ID:               inv.ID,
		StudentID:        inv.StudentID,
		StudentName:      inv.Student.FullName,
		AdmissionNumber:  inv.Student.AdmissionNumber,
		Term:             inv.Term,
		AcademicYearName: inv.AcademicYear.Name,
		TotalAmount:      inv.TotalAmount,
		PaidAmount:       inv.PaidAmount,
		Balance:          inv.Balance,
		Status:           inv.Status,
		DateGenerated:    inv.DateGenerated,
		DueDate:          inv.DueDate,
		Items:            make([]InvoiceItemDTO, 0, len(inv.Items)),
		Adjustments:      make([]AdjustmentDTO, 0, len(inv.Adjustments)),
		Payments:         make([]PaymentDTO, 0, len(inv.Payments)),
	}

	if inv.Student.CurrentClass != nil {
		dto.ClassName = inv.Student.CurrentClass.Name
		dto.StreamName = inv.Student.CurrentClass.Stream
	}

	for _, item := range inv.Items {
		dto.Items = append(dto.Items, InvoiceItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Amount:      item.Amount,
		})
	}
	for _, adj := range inv.Adjustments {
		dto.Adjustments = append(dto.Adjustments, AdjustmentDTO{
			ID:             adj.ID,
			AdjustmentType: adj.AdjustmentType,
			Amount:         adj.Amount,
			Reason:         adj.Reason,
			CreatedAt:      adj.CreatedAt,
		})
	}
	for _, p := range inv.Payments {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:              p.ID,
			Amount:          p.Amount,
			Method:          p.Method,
			ReferenceNumber: p.ReferenceNumber,
			DateReceived:    p.DateReceived,
		})
	}

	return dto
}

// ToStudentShort maps a student to its compact form.
func ToStudentShort(s models.Student) StudentShort {
	return StudentShort{
		ID:              s.ID,
		AdmissionNumber: s.AdmissionNumber,
		FullName:        s.FullName,
		Category:        s.Category,
	}
}
