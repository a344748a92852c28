package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type PaymentMethod string

const (
	MethodOnline   PaymentMethod = "online"
	MethodTransfer PaymentMethod = "transfer"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRejected:
		return true
	}
	return false
}

// StudentStatus is the value mirrored onto the owning student's record.
func (s PaymentStatus) StudentStatus() StudentPaymentStatus {
	switch s {
	case PaymentPaid:
		return StudentPaid
	case PaymentRejected:
		return StudentNotApplicable
	}
	return StudentPending
}

// NotificationType is the tone of the notification sent after a verification.
func (s PaymentStatus) NotificationType() NotificationType {
	switch s {
	case PaymentPaid:
		return NotifSuccess
	case PaymentRejected:
		return NotifDanger
	}
	return NotifInfo
}

type StudentPaymentStatus string

const (
	StudentPending       StudentPaymentStatus = "pending"
	StudentPaid          StudentPaymentStatus = "paid"
	StudentNotApplicable StudentPaymentStatus = "na"
)

type Payment struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	StudentID       uuid.UUID     `json:"student_id" db:"student_id"`
	Session         string        `json:"session" db:"session"`
	Level           int           `json:"level" db:"level"`
	Department      string        `json:"department" db:"department"`
	Semester        string        `json:"semester" db:"semester"`
	Method          PaymentMethod `json:"method" db:"method"`
	AmountExpected  float64       `json:"amount_expected" db:"amount_expected"`
	AmountPaid      float64       `json:"amount_paid" db:"amount_paid"`
	Status          PaymentStatus `json:"status" db:"status"`
	ReceiptURL      string        `json:"receipt_url" db:"receipt_url"`
	Reference       string        `json:"reference" db:"reference"`
	Remark          string        `json:"remark" db:"remark"`
	VerifiedByAdmin bool          `json:"verified_by_admin" db:"verified_by_admin"`
	VerifiedBy      *uuid.UUID    `json:"verified_by,omitempty" db:"verified_by"`
	PaidAt          *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	Version         int           `json:"-" db:"version"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
	IsPlaceholder   bool          `json:"is_placeholder,omitempty" db:"-"`
}

// ApplyDecision moves the payment to the admin's decision. A paid decision
// settles the expected amount in full.
func (p *Payment) ApplyDecision(decision PaymentStatus, adminID uuid.UUID, remark string) {
	p.Status = decision
	p.VerifiedByAdmin = decision == PaymentPaid
	p.VerifiedBy = &adminID
	if decision == PaymentPaid {
		p.AmountPaid = p.AmountExpected
	}
	if remark != "" {
		p.Remark = remark
	}
}

type PaymentConfig struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Level     int       `json:"level" db:"level"`
	Session   string    `json:"session" db:"session"`
	Amount    float64   `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsGlobal reports whether the config is the school-wide fallback row.
func (c PaymentConfig) IsGlobal() bool {
	return c.Level == 0 && c.Session == ""
}

type UpsertPaymentConfigInput struct {
	Level   int     `json:"level" validate:"omitempty,oneof=100 200 300 400 500"`
	Session string  `json:"session" validate:"omitempty,session"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
}

type VerifyPaymentInput struct {
	Status PaymentStatus `json:"status" validate:"required,oneof=pending paid rejected"`
	Remark string        `json:"remark"`
}

// GatewayTransaction is a verified transaction as reported by the payment gateway.
type GatewayTransaction struct {
	Reference  string
	Status     string
	Amount     int64
	PaidAt     *time.Time
	ReceiptURL string
	Metadata   GatewayMetadata
}

// MajorAmount converts the gateway's minor units into the stored currency amount.
func (t GatewayTransaction) MajorAmount() float64 {
	return float64(t.Amount) / 100
}

type GatewayMetadata struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name,omitempty"`
	Session   string `json:"session"`
	Level     int    `json:"level"`
}

type PaymentInitiation struct {
	Email    string          `json:"email"`
	Amount   float64         `json:"amount"`
	Minor    int64           `json:"amount_minor"`
	Metadata GatewayMetadata `json:"metadata"`
}

type TotalPaid struct {
	Total float64 `json:"total"`
}

var sessionPattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// ValidSession accepts "YYYY/YYYY" where the second year follows the first.
func ValidSession(s string) bool {
	m := sessionPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	var from, to int
	fmt.Sscan(m[1], &from)
	fmt.Sscan(m[2], &to)
	return to == from+1
}

func ValidLevel(level int) bool {
	switch level {
	case 100, 200, 300, 400, 500:
		return true
	}
	return false
}

// CurrentSession returns the academic session running at t. Sessions start in September.
func CurrentSession(t time.Time) string {
	year := t.Year()
	if t.Month() < time.September {
		year--
	}
	return fmt.Sprintf("%d/%d", year, year+1)
}
