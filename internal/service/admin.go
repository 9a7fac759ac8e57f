package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/notify"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/validation"
)

// maxDecideAttempts — сколько раз решение пересчитывается, если выбранную комнату успели занять.
const maxDecideAttempts = 3

// ListApplications возвращает заявки по фильтру с рассчитанным приоритетом.
// При byPriority список упорядочен по убыванию приоритета, иначе новые первыми.
func (s *Service) ListApplications(ctx context.Context, f model.ApplicationFilter, byPriority bool) ([]model.ScoredApplication, error) {
	apps, err := s.repo.ListApplications(ctx, f)
	if err != nil {
		return nil, err
	}

	res := make([]model.ScoredApplication, 0, len(apps))

	if byPriority {
		for _, r := range s.engine.Rank(apps) {
			res = append(res, model.ScoredApplication{Application: r.Application, PriorityScore: r.Score})
		}
		return res, nil
	}

	for _, a := range apps {
		res = append(res, s.scored(a))
	}
	return res, nil
}

func (s *Service) scored(a model.Application) model.ScoredApplication {
	sa := model.ScoredApplication{Application: a}
	if score, err := s.engine.ScorePriority(a); err == nil {
		sa.PriorityScore = &score
	} else {
		s.logger.Warn("score application error", zap.String("application", a.ID), zap.Error(err))
	}
	return sa
}

// ApplicationDetail возвращает заявку с приоритетом и, если есть, заселением.
func (s *Service) ApplicationDetail(ctx context.Context, id string) (*model.ApplicationDetail, error) {
	app, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &model.ApplicationDetail{ScoredApplication: s.scored(*app)}

	if app.Status == model.ApplicationStatusApproved {
		alloc, err := s.repo.GetAllocationByApplication(ctx, app.ID)
		switch {
		case err == nil:
			d.Allocation = alloc
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}

	return d, nil
}

// Decide рассматривает заявку и сохраняет решение. Если предложенную комнату заняли
// параллельным решением, список корпусов перечитывается и решение принимается заново.
func (s *Service) Decide(ctx context.Context, applicationID string, action allocation.Action, remarks string) (*allocation.Decision, error) {
	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var fees *model.FeeSettings
	if action == allocation.ActionApprove {
		fees, err = s.repo.GetFeeSettings(ctx)
		if err != nil {
			return nil, err
		}
	}

	remarks = strings.TrimSpace(remarks)

	for attempt := 1; ; attempt++ {
		var hostels []model.Hostel
		if action == allocation.ActionApprove {
			hostels, err = s.repo.ListHostels(ctx, "")
			if err != nil {
				return nil, err
			}
		}

		d, err := s.engine.Decide(*app, hostels, fees, action, remarks)
		if err != nil {
			return nil, err
		}
		if d.Allocation != nil {
			d.Allocation.ID = uuid.NewString()
		}

		err = s.repo.ApplyDecision(ctx, app.ID, d.Status, d.Remarks, d.Allocation)
		switch {
		case err == nil:
			s.publishDecision(ctx, app, d)
			return &d, nil
		case errors.Is(err, repository.ErrNotPending):
			return nil, &allocation.Error{
				Kind:  allocation.ErrInvalidStateTransition,
				Field: "status",
				Msg:   "application has already been decided",
			}
		case errors.Is(err, repository.ErrRoomUnavailable) && attempt < maxDecideAttempts:
			s.logger.Info("room taken concurrently, retrying decision",
				zap.String("application", app.ID), zap.Int("attempt", attempt))
		default:
			return nil, err
		}
	}
}

func (s *Service) publishDecision(ctx context.Context, app *model.Application, d allocation.Decision) {
	evt := notify.ApplicationDecided{
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		Status:        string(d.Status),
		Remarks:       d.Remarks,
	}

	key := notify.KeyApplicationRejected
	if d.Allocation != nil {
		key = notify.KeyApplicationApproved
		evt.AllocationID = d.Allocation.ID
		evt.HostelID = d.Allocation.HostelID
		evt.RoomNumber = d.Allocation.RoomNumber
		amount := d.Allocation.PaymentAmount
		evt.PaymentAmount = &amount
	}

	s.publish(ctx, key, evt)
}

// Stats возвращает сводку по заявкам.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	return s.repo.GetStats(ctx)
}

// ListHostels возвращает все корпуса.
func (s *Service) ListHostels(ctx context.Context) ([]model.Hostel, error) {
	return s.repo.ListHostels(ctx, "")
}

// CreateHostel создаёт корпус с пулом комнат по числу total_rooms.
func (s *Service) CreateHostel(ctx context.Context, h model.Hostel) (*model.Hostel, error) {
	h.Name = strings.TrimSpace(h.Name)
	h.Gender = model.Gender(strings.ToUpper(string(h.Gender)))

	if err := validation.ValidateHostel(h); err != nil {
		return nil, err
	}

	h.ID = uuid.NewString()
	if err := s.repo.CreateHostel(ctx, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// SetFees сохраняет тарифы оплаты проживания.
func (s *Service) SetFees(ctx context.Context, fees model.FeeSettings) error {
	if err := validation.ValidateFees(fees); err != nil {
		return err
	}
	if err := s.repo.SetFeeSettings(ctx, fees); err != nil {
		return fmt.Errorf("save fees: %w", err)
	}
	return nil
}

// SetApplicationPeriod сохраняет окно приёма заявок.
func (s *Service) SetApplicationPeriod(ctx context.Context, p model.ApplicationPeriod) error {
	if err := validation.ValidatePeriod(p); err != nil {
		return err
	}
	p.Start = p.Start.UTC()
	p.End = p.End.UTC()
	if err := s.repo.SetApplicationPeriod(ctx, p); err != nil {
		return fmt.Errorf("save application period: %w", err)
	}
	return nil
}
