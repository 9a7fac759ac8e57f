package notify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ключи маршрутизации событий.
const (
	KeyApplicationSubmitted = "application.submitted"
	KeyApplicationApproved  = "application.approved"
	KeyApplicationRejected  = "application.rejected"
	KeyPaymentCompleted     = "payment.completed"
	KeyPaymentFailed        = "payment.failed"
)

// ApplicationSubmitted публикуется после приёма новой заявки.
type ApplicationSubmitted struct {
	ApplicationID string    `json:"application_id"`
	StudentID     string    `json:"student_id"`
	AcademicYear  string    `json:"academic_year"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ApplicationDecided публикуется после одобрения или отклонения заявки.
// Поля заселения заполнены только для одобренных заявок.
type ApplicationDecided struct {
	ApplicationID string           `json:"application_id"`
	StudentID     string           `json:"student_id"`
	Status        string           `json:"status"`
	Remarks       string           `json:"remarks,omitempty"`
	AllocationID  string           `json:"allocation_id,omitempty"`
	HostelID      string           `json:"hostel_id,omitempty"`
	RoomNumber    string           `json:"room_number,omitempty"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
}

// PaymentUpdated публикуется при смене статуса оплаты заселения.
type PaymentUpdated struct {
	AllocationID  string          `json:"allocation_id"`
	ApplicationID string          `json:"application_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
}
