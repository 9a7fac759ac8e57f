// Package main запускает HTTP-сервер портала распределения мест в общежитиях.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/allocation"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/config"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/handler"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/middleware"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/notify"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/payment"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.AMQPURL != "" {
		pub, err := notify.NewPublisher(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			sugar.Fatalw("message broker initialization error", "error", err.Error())
		}
		defer pub.Close()
		notifier = pub
	} else {
		sugar.Info("AMQP_URL is not set, events are not published")
	}

	var paymentClient *payment.Client
	if cfg.PaymentSystemAddress != "" {
		paymentClient = payment.NewClient(cfg.PaymentSystemAddress)
	}

	engine := allocation.NewEngine(allocation.Weights{
		Distance:      cfg.Scoring.DistanceWeight,
		Economic:      cfg.Scoring.EconomicWeight,
		Academic:      cfg.Scoring.AcademicWeight,
		MaxDistanceKm: cfg.Scoring.MaxDistanceKm,
		MaxIncome:     cfg.Scoring.MaxIncome,
	})
	sugar.Infow("allocation engine configured", "weights", engine.Weights())

	svc := service.NewService(repo, engine, notifier, paymentClient, logger)
	defer svc.Close()

	if err := svc.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		sugar.Fatalw("admin bootstrap error", "error", err.Error())
	}

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is not set, sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая сверка статусов оплаты
	g.Go(func() error {
		svc.StartPaymentUpdates(ctx)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting hostel portal server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
