package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// CreateStudentAccount создаёт учётную запись и профиль студента в одной транзакции.
func (r *PostgresRepository) CreateStudentAccount(ctx context.Context, acc model.Account, s model.Student) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		acc.ID, acc.Email, acc.PasswordHash, string(acc.Role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrAccountExists, acc.Email)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO students (id, name, email, phone, gender, department)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		acc.ID, s.Name, s.Email, s.Phone, string(s.Gender), s.Department,
	)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// EnsureAccount создаёт учётную запись, если email ещё не занят. Возвращает true, если запись создана.
func (r *PostgresRepository) EnsureAccount(ctx context.Context, acc model.Account) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, role) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO NOTHING`,
		acc.ID, acc.Email, acc.PasswordHash, string(acc.Role),
	)
	if err != nil {
		return false, fmt.Errorf("insert account: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetAccountByEmail возвращает учётную запись по email.
func (r *PostgresRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var (
		a    model.Account
		role string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	a.Role = model.Role(role)

	return &a, nil
}

// GetStudent возвращает профиль студента.
func (r *PostgresRepository) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	var (
		s      model.Student
		gender string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, COALESCE(phone, ''), gender, department, created_at, updated_at
		 FROM students WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &gender, &s.Department, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	s.Gender = model.Gender(gender)

	return &s, nil
}
