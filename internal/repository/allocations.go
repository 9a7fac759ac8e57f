package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

const allocationSelect = `SELECT al.id, al.application_id, al.hostel_id, h.name, al.room_number, al.allotment_date,
       al.payment_status, al.payment_amount::text, al.created_at, al.updated_at
FROM allocations al
JOIN hostels h ON h.id = al.hostel_id`

func scanAllocation(row pgx.Row) (*model.Allocation, error) {
	var (
		a      model.Allocation
		status string
		amount string
	)
	err := row.Scan(&a.ID, &a.ApplicationID, &a.HostelID, &a.HostelName, &a.RoomNumber, &a.AllotmentDate,
		&status, &amount, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.PaymentStatus = model.PaymentStatus(status)
	a.PaymentAmount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse payment amount %q: %w", amount, err)
	}

	return &a, nil
}

// GetAllocationByApplication возвращает запись о заселении по заявке.
func (r *PostgresRepository) GetAllocationByApplication(ctx context.Context, applicationID string) (*model.Allocation, error) {
	a, err := scanAllocation(r.pool.QueryRow(ctx, allocationSelect+` WHERE al.application_id = $1`, applicationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return a, nil
}

// GetAllocationsForPayment возвращает заселения, оплата которых ещё не подтверждена.
func (r *PostgresRepository) GetAllocationsForPayment(ctx context.Context, limit int) ([]model.Allocation, error) {
	rows, err := r.pool.Query(ctx,
		allocationSelect+` WHERE al.payment_status = $1 ORDER BY al.allotment_date LIMIT $2`,
		string(model.PaymentStatusPending), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select allocations: %w", err)
	}
	defer rows.Close()

	var res []model.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		res = append(res, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdatePaymentStatus переводит оплату из PENDING в итоговый статус.
func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, allocationID string, status model.PaymentStatus) error {
	return r.withRetry(ctx, func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE allocations SET payment_status = $2, updated_at = now()
			 WHERE id = $1 AND payment_status = $3`,
			allocationID, string(status), string(model.PaymentStatusPending),
		)
		if err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrPaymentNotPending
		}
		return nil
	})
}
