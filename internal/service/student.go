package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/notify"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/validation"
)

// SubmitApplication принимает заявку студента, если окно приёма открыто.
// Предпочтения должны ссылаться на корпуса, подходящие студенту по полу.
func (s *Service) SubmitApplication(ctx context.Context, studentID string, app model.Application) (*model.Application, error) {
	active, err := s.periodActive(ctx)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrApplicationPeriodClosed
	}

	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	app.Category = model.Category(strings.ToUpper(strings.TrimSpace(string(app.Category))))
	app.HomeAddress = strings.TrimSpace(app.HomeAddress)
	app.AcademicYear = strings.TrimSpace(app.AcademicYear)

	if err := validation.ValidateApplication(app); err != nil {
		return nil, err
	}

	hostels, err := s.repo.ListHostels(ctx, student.Gender)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]struct{}, len(hostels))
	for _, h := range hostels {
		allowed[h.ID] = struct{}{}
	}
	for _, id := range app.HostelPreference {
		if _, ok := allowed[id]; !ok {
			return nil, &validation.FieldError{
				Field: "hostel_preference",
				Msg:   "hostel " + id + " is not available for " + string(student.Gender) + " students",
			}
		}
	}

	app.ID = uuid.NewString()
	app.StudentID = student.ID
	app.Status = model.ApplicationStatusPending
	app.Remarks = ""
	app.ApplicantGender = student.Gender
	app.ApplicantName = student.Name
	app.Department = student.Department

	if err := s.repo.CreateApplication(ctx, &app); err != nil {
		return nil, err
	}

	s.publish(ctx, notify.KeyApplicationSubmitted, notify.ApplicationSubmitted{
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		AcademicYear:  app.AcademicYear,
		SubmittedAt:   app.CreatedAt,
	})

	return &app, nil
}

// Dashboard собирает профиль студента, последнюю заявку, заселение и состояние окна приёма.
func (s *Service) Dashboard(ctx context.Context, studentID string) (*model.Dashboard, error) {
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	d := &model.Dashboard{Student: student}

	app, err := s.repo.GetLatestApplicationByStudent(ctx, studentID, "")
	switch {
	case err == nil:
		d.Application = app
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	// Заселение относится к последней одобренной заявке, даже если после неё подана новая.
	if d.Application != nil {
		alloc, err := s.currentAllocation(ctx, studentID)
		switch {
		case err == nil:
			d.Allocation = alloc
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	d.ApplicationPeriodActive, err = s.periodActive(ctx)
	if err != nil {
		return nil, err
	}

	return d, nil
}

// HostelsForStudent возвращает корпуса, подходящие студенту по полу.
func (s *Service) HostelsForStudent(ctx context.Context, studentID string) ([]model.Hostel, error) {
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListHostels(ctx, student.Gender)
}

// PayFee отмечает оплату проживания по текущему заселению студента.
func (s *Service) PayFee(ctx context.Context, studentID string) (*model.Allocation, error) {
	alloc, err := s.currentAllocation(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePaymentStatus(ctx, alloc.ID, model.PaymentStatusCompleted); err != nil {
		return nil, err
	}
	alloc.PaymentStatus = model.PaymentStatusCompleted

	s.publish(ctx, notify.KeyPaymentCompleted, notify.PaymentUpdated{
		AllocationID:  alloc.ID,
		ApplicationID: alloc.ApplicationID,
		Status:        string(alloc.PaymentStatus),
		Amount:        alloc.PaymentAmount,
	})

	return alloc, nil
}

func (s *Service) currentAllocation(ctx context.Context, studentID string) (*model.Allocation, error) {
	app, err := s.repo.GetLatestApplicationByStudent(ctx, studentID, model.ApplicationStatusApproved)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAllocationByApplication(ctx, app.ID)
}

// ApplicationPeriod возвращает окно приёма заявок и признак того, что оно открыто сейчас.
// Если окно не задано, возвращает nil и false.
func (s *Service) ApplicationPeriod(ctx context.Context) (*model.ApplicationPeriod, bool, error) {
	p, err := s.repo.GetApplicationPeriod(ctx)
	if err != nil || p == nil {
		return nil, false, err
	}
	return p, allocation.IsApplicationPeriodActive(s.now(), *p), nil
}

func (s *Service) periodActive(ctx context.Context) (bool, error) {
	_, active, err := s.ApplicationPeriod(ctx)
	return active, err
}
