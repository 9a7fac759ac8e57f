// Package service реализует бизнес-логику портала распределения мест в общежитиях.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/notify"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/payment"
)

var (
	// ErrInvalidCredentials возвращается при неверном email или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPortal возвращается при входе через портал чужой роли.
	ErrWrongPortal = errors.New("account does not belong to this portal")
	// ErrApplicationPeriodClosed возвращается при подаче заявки вне окна приёма.
	ErrApplicationPeriodClosed = errors.New("application period is closed")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateStudentAccount(ctx context.Context, acc model.Account, s model.Student) error
	EnsureAccount(ctx context.Context, acc model.Account) (bool, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetStudent(ctx context.Context, id string) (*model.Student, error)

	CreateApplication(ctx context.Context, a *model.Application) error
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	GetLatestApplicationByStudent(ctx context.Context, studentID string, status model.ApplicationStatus) (*model.Application, error)
	ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.Application, error)
	GetStats(ctx context.Context) (*model.Stats, error)
	ApplyDecision(ctx context.Context, applicationID string, status model.ApplicationStatus, remarks string, alloc *model.Allocation) error

	CreateHostel(ctx context.Context, h *model.Hostel) error
	ListHostels(ctx context.Context, gender model.Gender) ([]model.Hostel, error)

	GetAllocationByApplication(ctx context.Context, applicationID string) (*model.Allocation, error)
	GetAllocationsForPayment(ctx context.Context, limit int) ([]model.Allocation, error)
	UpdatePaymentStatus(ctx context.Context, allocationID string, status model.PaymentStatus) error

	GetFeeSettings(ctx context.Context) (*model.FeeSettings, error)
	SetFeeSettings(ctx context.Context, fees model.FeeSettings) error
	GetApplicationPeriod(ctx context.Context) (*model.ApplicationPeriod, error)
	SetApplicationPeriod(ctx context.Context, p model.ApplicationPeriod) error
}

// Service содержит бизнес-логику портала.
type Service struct {
	repo          Repository
	engine        *allocation.Engine
	notifier      notify.Notifier
	paymentClient *payment.Client
	logger        *zap.Logger

	now          func() time.Time
	pollInterval time.Duration
}

// NewService создаёт сервис. notifier и paymentClient могут быть nil.
func NewService(repo Repository, engine *allocation.Engine, notifier notify.Notifier, paymentClient *payment.Client, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repo:          repo,
		engine:        engine,
		notifier:      notifier,
		paymentClient: paymentClient,
		logger:        logger,
		now:           time.Now,
		pollInterval:  time.Second,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// publish отправляет событие. Ошибка брокера не прерывает операцию.
func (s *Service) publish(ctx context.Context, key string, v any) {
	if err := s.notifier.PublishJSON(ctx, key, v); err != nil {
		s.logger.Warn("publish event error", zap.String("key", key), zap.Error(err))
	}
}
