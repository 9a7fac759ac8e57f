package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/notify"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/payment"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
)

const paymentBatchSize = 100

// StartPaymentUpdates запускает фоновую сверку статусов оплаты с платёжным шлюзом.
func (s *Service) StartPaymentUpdates(ctx context.Context) {
	if s.paymentClient == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processPaymentBatch(ctx)
			}
		}
	}()
}

func (s *Service) processPaymentBatch(ctx context.Context) {
	allocs, err := s.repo.GetAllocationsForPayment(ctx, paymentBatchSize)
	if err != nil {
		s.logger.Error("load allocations for payment error", zap.Error(err))
		return
	}

	for _, a := range allocs {
		resp, statusCode, retryAfter, err := s.paymentClient.GetPaymentStatus(ctx, a.ID)
		if err != nil {
			s.logger.Warn("payment status request error", zap.String("allocation", a.ID), zap.Error(err))
			continue
		}

		if statusCode == http.StatusTooManyRequests {
			if retryAfter > 0 {
				timer := time.NewTimer(retryAfter)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			continue
		}

		if resp == nil {
			continue
		}

		var (
			status model.PaymentStatus
			key    string
		)
		switch resp.Status {
		case payment.StatusCompleted:
			status, key = model.PaymentStatusCompleted, notify.KeyPaymentCompleted
		case payment.StatusFailed:
			status, key = model.PaymentStatusFailed, notify.KeyPaymentFailed
		default:
			continue
		}

		if resp.Amount != nil && !resp.Amount.Equal(a.PaymentAmount) {
			s.logger.Warn("payment amount mismatch",
				zap.String("allocation", a.ID),
				zap.String("expected", a.PaymentAmount.String()),
				zap.String("got", resp.Amount.String()))
		}

		if err := s.repo.UpdatePaymentStatus(ctx, a.ID, status); err != nil {
			if !errors.Is(err, repository.ErrPaymentNotPending) {
				s.logger.Error("update payment status error", zap.String("allocation", a.ID), zap.Error(err))
			}
			continue
		}

		s.publish(ctx, key, notify.PaymentUpdated{
			AllocationID:  a.ID,
			ApplicationID: a.ApplicationID,
			Status:        string(status),
			Amount:        a.PaymentAmount,
		})
	}
}
