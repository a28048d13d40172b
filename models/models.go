package models

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Invoice status values. Closed set; derived, never set by hand.
const (
	InvoiceStatusUnpaid   = "UNPAID"
	InvoiceStatusPartial  = "PARTIAL"
	InvoiceStatusPaid     = "PAID"
	InvoiceStatusOverpaid = "OVERPAID"
)

// Adjustment types
const (
	AdjustmentDebit  = "DEBIT"  // increases the amount owed (fines)
	AdjustmentCredit = "CREDIT" // decreases the amount owed (waivers)
)

// Payment methods
const (
	PaymentMethodCash  = "CASH"
	PaymentMethodMpesa = "MPESA"
	PaymentMethodBank  = "BANK"
)

// User model
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255;uniqueIndex"`
	Phone    string `json:"phone" gorm:"size:20"`
	FullName string `json:"full_name" gorm:"size:200"`
	Role     string `json:"role" gorm:"size:50;not null;default:'clerk';type:enum('owner','admin','bursar','clerk')"` // owner, admin, bursar, clerk
	Status   string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
}

// AcademicYear model, e.g. "2025"
type AcademicYear struct {
	BaseModel
	Name     string `json:"name" gorm:"size:20;not null;uniqueIndex"`
	IsActive bool   `json:"is_active" gorm:"default:false;index"`
}

// Term model. Name like "Term 1"; Number is the canonical 1..3 value.
type Term struct {
	BaseModel
	AcademicYearID uint       `json:"academic_year_id" gorm:"not null;index"`
	Name           string     `json:"name" gorm:"size:50;not null"`
	Number         int        `json:"number" gorm:"not null"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
	IsActive       bool       `json:"is_active" gorm:"default:false;index"`

	// Relationships
	AcademicYear AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID"`
}

// SchoolClass model. Name is the level ("Grade 1"), Stream splits a level ("East").
type SchoolClass struct {
	BaseModel
	Name     string `json:"name" gorm:"size:50;not null;index"`
	Stream   string `json:"stream" gorm:"size:50"`
	Capacity int    `json:"capacity" gorm:"default:40"`
}

// Student model. Consumed read-only by the ledger; maintained elsewhere.
type Student struct {
	BaseModel
	AdmissionNumber string `json:"admission_number" gorm:"size:20;not null;uniqueIndex"`
	FullName        string `json:"full_name" gorm:"size:255;not null"`
	Category        string `json:"category" gorm:"size:10;default:'DAY';type:enum('DAY','BOARDING')"` // DAY, BOARDING
	CurrentClassID  *uint  `json:"current_class_id" gorm:"index"`
	GuardianName    string `json:"guardian_name" gorm:"size:255"`
	GuardianPhone   string `json:"guardian_phone" gorm:"size:20"`
	GuardianEmail   string `json:"guardian_email" gorm:"size:255"`
	IsActive        bool   `json:"is_active" gorm:"default:true;index"`

	// Relationships
	CurrentClass *SchoolClass `json:"current_class,omitempty" gorm:"foreignKey:CurrentClassID"`
}

// FeeStructure is the billable-amount template for a year/term/class level.
// Rows with a nil ClassID apply to every class. Referenced amounts are
// snapshotted onto InvoiceItem, so later edits never touch issued invoices.
type FeeStructure struct {
	BaseModel
	Name           string          `json:"name" gorm:"size:100;not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	AcademicYearID uint            `json:"academic_year_id" gorm:"not null;index"`
	Term           int             `json:"term" gorm:"not null;index"` // 1..3
	ClassID        *uint           `json:"class_id" gorm:"index"`      // nil = applies to all classes
	Description    string          `json:"description" gorm:"type:text"`
	IsActive       bool            `json:"is_active" gorm:"default:true"`

	// Relationships
	AcademicYear AcademicYear `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID"`
	Class        *SchoolClass `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

// Invoice is the master bill for one student for one year+term.
// total_amount/paid_amount/balance/status are cached derivations; the source
// rows (items, adjustments, payments) are always authoritative.
type Invoice struct {
	BaseModel
	StudentID      uint `json:"student_id" gorm:"not null;uniqueIndex:idx_invoice_period"`
	AcademicYearID uint `json:"academic_year_id" gorm:"not null;uniqueIndex:idx_invoice_period;index"`
	Term           int  `json:"term" gorm:"not null;uniqueIndex:idx_invoice_period;index"`

	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);default:0;index"`
	PaidAmount  decimal.Decimal `json:"paid_amount" gorm:"type:decimal(12,2);default:0;index"`
	Balance     decimal.Decimal `json:"balance" gorm:"type:decimal(12,2);default:0;index"`

	Status        string     `json:"status" gorm:"size:10;default:'UNPAID';index;type:enum('UNPAID','PARTIAL','PAID','OVERPAID')"`
	DateGenerated time.Time  `json:"date_generated" gorm:"index"`
	DueDate       *time.Time `json:"due_date"`

	// Relationships
	Student      Student       `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	AcademicYear AcademicYear  `json:"academic_year,omitempty" gorm:"foreignKey:AcademicYearID"`
	Items        []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
	Adjustments  []Adjustment  `json:"adjustments,omitempty" gorm:"foreignKey:InvoiceID"`
	Payments     []Payment     `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

// InvoiceItem is one billed line on an invoice. Immutable after creation;
// Description/Amount are snapshots of the fee structure at generation time.
type InvoiceItem struct {
	BaseModel
	InvoiceID      uint            `json:"invoice_id" gorm:"not null;index"`
	FeeStructureID *uint           `json:"fee_structure_id" gorm:"index"`
	Description    string          `json:"description" gorm:"size:150;not null"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
}

// Adjustment is a manual credit/debit note against an invoice.
type Adjustment struct {
	BaseModel
	InvoiceID      uint            `json:"invoice_id" gorm:"not null;index"`
	AdjustmentType string          `json:"adjustment_type" gorm:"size:10;not null;type:enum('DEBIT','CREDIT')"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Reason         string          `json:"reason" gorm:"type:text"`
	ApprovedByID   *uint           `json:"approved_by_id"`

	// Origin tracking for adjustments pushed from other modules (library fines etc.)
	OriginModel string `json:"origin_model" gorm:"size:100;index"`
	OriginID    uint   `json:"origin_id" gorm:"index"`

	// Relationships
	ApprovedBy *User `json:"approved_by,omitempty" gorm:"foreignKey:ApprovedByID"`
}

// Payment is an incoming money transaction. Append-only; corrections are
// made with an offsetting CREDIT adjustment, never by editing the row.
type Payment struct {
	BaseModel
	InvoiceID       uint            `json:"invoice_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Method          string          `json:"method" gorm:"size:10;not null;type:enum('CASH','MPESA','BANK')"`
	ReferenceNumber string          `json:"reference_number" gorm:"size:50;index"` // required for MPESA/BANK
	DateReceived    time.Time       `json:"date_received" gorm:"index"`
	ReceivedByID    *uint           `json:"received_by_id"`
	Notes           string          `json:"notes" gorm:"type:text"`

	// Relationships
	Invoice    Invoice `json:"invoice,omitempty" gorm:"foreignKey:InvoiceID"`
	ReceivedBy *User   `json:"received_by,omitempty" gorm:"foreignKey:ReceivedByID"`
}

// Expense is school expenditure, independent of students.
type Expense struct {
	BaseModel
	Category     string          `json:"category" gorm:"size:20;not null;type:enum('SALARY','UTILITIES','MAINTENANCE','SUPPLIES','FOOD','OTHER')"`
	Status       string          `json:"status" gorm:"size:10;default:'PENDING';type:enum('PENDING','APPROVED','DECLINED')"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description  string          `json:"description" gorm:"type:text"`
	PaidTo       string          `json:"paid_to" gorm:"size:100;default:'Unknown'"`
	DateOccurred time.Time       `json:"date_occurred"`
	ReceiptURL   string          `json:"receipt_url" gorm:"size:500"`
	ApprovedByID *uint           `json:"approved_by_id"`

	// Relationships
	ApprovedBy *User `json:"approved_by,omitempty" gorm:"foreignKey:ApprovedByID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// LogArchive model for tracking archived logs
type LogArchive struct {
	BaseModel
	FileName    string    `json:"file_name" gorm:"size:255;not null"`
	S3Key       string    `json:"s3_key" gorm:"size:500;not null"`
	StartDate   time.Time `json:"start_date" gorm:"not null"`
	EndDate     time.Time `json:"end_date" gorm:"not null"`
	RecordCount int       `json:"record_count" gorm:"not null"`
	FileSize    int64     `json:"file_size" gorm:"not null"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string    `json:"error" gorm:"type:text"`
}
