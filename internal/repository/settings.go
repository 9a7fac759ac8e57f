package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

const (
	settingFees   = "hostel_fees"
	settingPeriod = "application_dates"
)

// GetFeeSettings возвращает тарифы оплаты. Если они не заданы, возвращает nil.
func (r *PostgresRepository) GetFeeSettings(ctx context.Context) (*model.FeeSettings, error) {
	var fees model.FeeSettings
	ok, err := r.getSetting(ctx, settingFees, &fees)
	if err != nil || !ok {
		return nil, err
	}
	return &fees, nil
}

// SetFeeSettings сохраняет тарифы оплаты.
func (r *PostgresRepository) SetFeeSettings(ctx context.Context, fees model.FeeSettings) error {
	return r.setSetting(ctx, settingFees, "Hostel fee per category", fees)
}

// GetApplicationPeriod возвращает окно приёма заявок. Если оно не задано, возвращает nil.
func (r *PostgresRepository) GetApplicationPeriod(ctx context.Context) (*model.ApplicationPeriod, error) {
	var p model.ApplicationPeriod
	ok, err := r.getSetting(ctx, settingPeriod, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SetApplicationPeriod сохраняет окно приёма заявок.
func (r *PostgresRepository) SetApplicationPeriod(ctx context.Context, p model.ApplicationPeriod) error {
	return r.setSetting(ctx, settingPeriod, "Application window", p)
}

func (r *PostgresRepository) getSetting(ctx context.Context, key string, dst any) (bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get setting %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return true, nil
}

func encodeSetting(key string, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode setting %s: %w", key, err)
	}
	return raw, nil
}

func (r *PostgresRepository) setSetting(ctx context.Context, key, description string, value any) error {
	raw, err := encodeSetting(key, value)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, description) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, string(raw), description,
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}
