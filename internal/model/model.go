// Package model содержит доменные сущности сервиса распределения мест в общежитиях.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Role определяет роль учётной записи.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Account представляет учётную запись для входа в портал.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// Gender используется для фильтрации общежитий по полу проживающих.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Student представляет зарегистрированного студента.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Gender     Gender    `json:"gender"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplicationStatus описывает статус заявки на заселение.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Category определяет льготную категорию, от которой зависит размер оплаты.
type Category string

const (
	CategoryGeneral Category = "GENERAL"
	CategoryOBC     Category = "OBC"
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
)

// Application описывает заявку студента на учебный год.
type Application struct {
	ID               string            `json:"id"`
	StudentID        string            `json:"student_id"`
	AcademicYear     string            `json:"academic_year"`
	CurrentYear      int               `json:"current_year"`
	CGPA             *float64          `json:"cgpa,omitempty"`
	HomeAddress      string            `json:"home_address"`
	DistanceKm       *float64          `json:"distance_km,omitempty"`
	AnnualIncome     *float64          `json:"annual_income,omitempty"`
	Category         Category          `json:"category,omitempty"`
	PhotoIDURL       string            `json:"photo_id_url,omitempty"`
	IncomeCertURL    string            `json:"income_cert_url,omitempty"`
	HostelPreference []string          `json:"hostel_preference"`
	Status           ApplicationStatus `json:"status"`
	Remarks          string            `json:"remarks,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`

	// Поля студента, подтягиваемые вместе с заявкой.
	ApplicantGender Gender `json:"applicant_gender,omitempty"`
	ApplicantName   string `json:"applicant_name,omitempty"`
	Department      string `json:"department,omitempty"`
}

// Hostel описывает корпус общежития.
type Hostel struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Gender         Gender    `json:"gender"`
	TotalRooms     int       `json:"total_rooms"`
	AvailableRooms int       `json:"available_rooms"`
	Facilities     []string  `json:"facilities"`
	CreatedAt      time.Time `json:"created_at"`

	// FreeRooms — номера свободных комнат в порядке выдачи.
	FreeRooms []string `json:"-"`
}

// FeeSettings содержит размер оплаты проживания по категориям.
type FeeSettings struct {
	General  decimal.Decimal `json:"general"`
	Reserved decimal.Decimal `json:"reserved"`
}

// MarshalJSON записывает суммы числами, а не строками: в этом виде тарифы хранятся в settings.
func (f FeeSettings) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		General  json.Number `json:"general"`
		Reserved json.Number `json:"reserved"`
	}{
		General:  json.Number(f.General.String()),
		Reserved: json.Number(f.Reserved.String()),
	})
}

// ApplicationPeriod задаёт окно приёма заявок.
type ApplicationPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PaymentStatus описывает статус оплаты проживания.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Allocation описывает выделенную по одобренной заявке комнату.
type Allocation struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	HostelID      string          `json:"hostel_id"`
	HostelName    string          `json:"hostel_name,omitempty"`
	RoomNumber    string          `json:"room_number"`
	AllotmentDate time.Time       `json:"allotment_date"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ApplicationFilter задаёт условия выборки заявок в кабинете администратора.
type ApplicationFilter struct {
	Status     ApplicationStatus
	Gender     Gender
	Department string
	Search     string
}

// Stats содержит сводку по заявкам для кабинета администратора.
type Stats struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	MaleCount   int `json:"male_count"`
	FemaleCount int `json:"female_count"`
}

// Dashboard собирает данные личного кабинета студента.
type Dashboard struct {
	Student                 *Student     `json:"student"`
	Application             *Application `json:"application,omitempty"`
	Allocation              *Allocation  `json:"allocation,omitempty"`
	ApplicationPeriodActive bool         `json:"application_period_active"`
}

// ScoredApplication — заявка с рассчитанным приоритетом для списка администратора.
type ScoredApplication struct {
	Application
	PriorityScore *float64 `json:"priority_score,omitempty"`
}

// ApplicationDetail — карточка заявки для администратора.
type ApplicationDetail struct {
	ScoredApplication
	Allocation *Allocation `json:"allocation,omitempty"`
}
