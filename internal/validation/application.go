// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// ErrValidation объединяет все ошибки проверки входных данных.
var ErrValidation = errors.New("validation failed")

// FieldError указывает поле, не прошедшее проверку.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func fieldErr(field, msg string) error {
	return &FieldError{Field: field, Msg: msg}
}

const (
	minHomeAddressLen = 5
	minPasswordLen    = 6
	maxCurrentYear    = 5
)

// ValidateApplication проверяет поля формы заявки.
func ValidateApplication(app model.Application) error {
	if !IsValidAcademicYear(app.AcademicYear) {
		return fieldErr("academic_year", "expected consecutive years like 2025-2026")
	}

	if app.CurrentYear < 1 || app.CurrentYear > maxCurrentYear {
		return fieldErr("current_year", "must be within 1..5")
	}

	if app.CGPA != nil && (*app.CGPA < 0 || *app.CGPA > 10) {
		return fieldErr("cgpa", "must be within 0..10")
	}

	if utf8.RuneCountInString(strings.TrimSpace(app.HomeAddress)) < minHomeAddressLen {
		return fieldErr("home_address", "please enter your complete home address")
	}

	if app.DistanceKm != nil && *app.DistanceKm < 0 {
		return fieldErr("distance_km", "must be non-negative")
	}

	if app.AnnualIncome != nil && *app.AnnualIncome < 0 {
		return fieldErr("annual_income", "must be non-negative")
	}

	if app.Category != "" && !IsValidCategory(app.Category) {
		return fieldErr("category", "unknown category")
	}

	seen := make(map[string]struct{}, len(app.HostelPreference))
	for _, id := range app.HostelPreference {
		if id == "" {
			return fieldErr("hostel_preference", "empty hostel id")
		}
		if _, ok := seen[id]; ok {
			return fieldErr("hostel_preference", "duplicate hostel "+id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

// IsValidAcademicYear проверяет формат учебного года: два последовательных года через дефис.
func IsValidAcademicYear(year string) bool {
	parts := strings.Split(year, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 4 {
		return false
	}

	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	to, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}

	return to == from+1
}

// IsValidCategory проверяет, что категория входит в известный список.
func IsValidCategory(c model.Category) bool {
	switch c {
	case model.CategoryGeneral, model.CategoryOBC, model.CategorySC, model.CategoryST:
		return true
	}
	return false
}

// ValidateRegistration проверяет данные регистрации студента.
func ValidateRegistration(s model.Student, password string) error {
	if strings.TrimSpace(s.Name) == "" {
		return fieldErr("name", "required")
	}

	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fieldErr("email", "invalid email")
	}

	if utf8.RuneCountInString(password) < minPasswordLen {
		return fieldErr("password", "must be at least 6 characters")
	}

	if s.Gender != model.GenderMale && s.Gender != model.GenderFemale {
		return fieldErr("gender", "must be MALE or FEMALE")
	}

	if strings.TrimSpace(s.Department) == "" {
		return fieldErr("department", "required")
	}

	return nil
}

// ValidateHostel проверяет параметры нового корпуса.
func ValidateHostel(h model.Hostel) error {
	if strings.TrimSpace(h.Name) == "" {
		return fieldErr("name", "required")
	}
	if h.Gender != model.GenderMale && h.Gender != model.GenderFemale {
		return fieldErr("gender", "must be MALE or FEMALE")
	}
	if h.TotalRooms <= 0 {
		return fieldErr("total_rooms", "must be positive")
	}
	return nil
}

// ValidateFees проверяет, что тарифы неотрицательны.
func ValidateFees(f model.FeeSettings) error {
	if f.General.IsNegative() {
		return fieldErr("general", "must be non-negative")
	}
	if f.Reserved.IsNegative() {
		return fieldErr("reserved", "must be non-negative")
	}
	return nil
}

// ValidatePeriod проверяет, что окно приёма заявок задано и не перевёрнуто.
func ValidatePeriod(p model.ApplicationPeriod) error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fieldErr("start", "start and end are required")
	}
	if p.End.Before(p.Start) {
		return fieldErr("end", "must not be before start")
	}
	return nil
}
