// Package config содержит логику чтения конфигурации портала распределения мест в общежитиях.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress           string `env:"RUN_ADDRESS"`
	DatabaseURI          string `env:"DATABASE_URI"`
	PaymentSystemAddress string `env:"PAYMENT_SYSTEM_ADDRESS"`
	AMQPURL              string `env:"AMQP_URL"`
	EventsExchange       string `env:"EVENTS_EXCHANGE" envDefault:"hostel.events"`

	AuthSecret    string `env:"AUTH_SECRET"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Scoring Scoring `envPrefix:"SCORE_"`
}

// Scoring содержит коэффициенты формулы приоритета заявок.
type Scoring struct {
	DistanceWeight float64 `env:"DISTANCE_WEIGHT" envDefault:"0.4"`
	EconomicWeight float64 `env:"ECONOMIC_WEIGHT" envDefault:"0.36"`
	AcademicWeight float64 `env:"ACADEMIC_WEIGHT" envDefault:"0.1"`
	MaxDistanceKm  float64 `env:"MAX_DISTANCE_KM" envDefault:"1000"`
	MaxIncome      float64 `env:"MAX_INCOME" envDefault:"1000000"`
}

// Parse считывает конфигурацию из файла .env, флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	// Файл .env необязателен.
	_ = godotenv.Load()

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envPaymentAddress := cfg.PaymentSystemAddress
	envAMQPURL := cfg.AMQPURL

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.PaymentSystemAddress, "r", "", "payment gateway address")
	flag.StringVar(&cfg.AMQPURL, "m", "", "message broker URL")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envPaymentAddress != "" {
		cfg.PaymentSystemAddress = envPaymentAddress
	}
	if envAMQPURL != "" {
		cfg.AMQPURL = envAMQPURL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}

	if err := cfg.Scoring.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s Scoring) validate() error {
	if s.MaxDistanceKm <= 0 || s.MaxIncome <= 0 {
		return errors.New("score caps must be positive")
	}
	if s.DistanceWeight < 0 || s.EconomicWeight < 0 || s.AcademicWeight < 0 {
		return errors.New("score weights must be non-negative")
	}
	return nil
}
