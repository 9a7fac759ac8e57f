package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

var applicationColumns = []string{
	"a.id", "a.student_id", "a.academic_year", "a.current_year", "a.cgpa", "a.home_address",
	"a.distance_km", "a.annual_income", "COALESCE(a.category, '')",
	"COALESCE(a.photo_id_url, '')", "COALESCE(a.income_cert_url, '')",
	"a.hostel_preference", "a.status", "COALESCE(a.remarks, '')", "a.created_at", "a.updated_at",
	"s.gender", "s.name", "s.department",
}

func (r *PostgresRepository) applicationSelect() sq.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("students s ON s.id = a.student_id")
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var (
		a        model.Application
		category string
		status   string
		gender   string
	)
	err := row.Scan(
		&a.ID, &a.StudentID, &a.AcademicYear, &a.CurrentYear, &a.CGPA, &a.HomeAddress,
		&a.DistanceKm, &a.AnnualIncome, &category,
		&a.PhotoIDURL, &a.IncomeCertURL,
		&a.HostelPreference, &status, &a.Remarks, &a.CreatedAt, &a.UpdatedAt,
		&gender, &a.ApplicantName, &a.Department,
	)
	if err != nil {
		return nil, err
	}
	a.Category = model.Category(category)
	a.Status = model.ApplicationStatus(status)
	a.ApplicantGender = model.Gender(gender)

	return &a, nil
}

// CreateApplication сохраняет новую заявку в статусе PENDING.
func (r *PostgresRepository) CreateApplication(ctx context.Context, a *model.Application) error {
	prefs := a.HostelPreference
	if prefs == nil {
		prefs = []string{}
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO applications (id, student_id, academic_year, current_year, cgpa, home_address,
		   distance_km, annual_income, category, photo_id_url, income_cert_url, hostel_preference, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13)
		 RETURNING created_at, updated_at`,
		a.ID, a.StudentID, a.AcademicYear, a.CurrentYear, a.CGPA, a.HomeAddress,
		a.DistanceKm, a.AnnualIncome, string(a.Category), a.PhotoIDURL, a.IncomeCertURL, prefs,
		string(model.ApplicationStatusPending),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrApplicationExists, a.AcademicYear)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	a.Status = model.ApplicationStatusPending

	return nil
}

// GetApplication возвращает заявку по идентификатору вместе с данными студента.
func (r *PostgresRepository) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	query, args, err := r.applicationSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	a, err := scanApplication(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) latestApplicationQuery(studentID string, status model.ApplicationStatus) (string, []any, error) {
	q := r.applicationSelect().Where(sq.Eq{"a.student_id": studentID})
	if status != "" {
		q = q.Where(sq.Eq{"a.status": string(status)})
	}
	return q.OrderBy("a.created_at DESC").Limit(1).ToSql()
}

// GetLatestApplicationByStudent возвращает последнюю поданную студентом заявку.
// Непустой status ограничивает поиск заявками в этом статусе.
func (r *PostgresRepository) GetLatestApplicationByStudent(ctx context.Context, studentID string, status model.ApplicationStatus) (*model.Application, error) {
	query, args, err := r.latestApplicationQuery(studentID, status)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	a, err := scanApplication(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest application: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) listApplicationsQuery(f model.ApplicationFilter) (string, []any, error) {
	q := r.applicationSelect()

	if f.Status != "" {
		q = q.Where(sq.Eq{"a.status": string(f.Status)})
	}
	if f.Gender != "" {
		q = q.Where(sq.Eq{"s.gender": string(f.Gender)})
	}
	if f.Department != "" {
		q = q.Where(sq.Eq{"s.department": f.Department})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"s.name": pattern},
			sq.ILike{"s.email": pattern},
			sq.Eq{"s.id": search},
			sq.Eq{"a.id": search},
		})
	}

	return q.OrderBy("a.created_at DESC").ToSql()
}

// ListApplications возвращает заявки по фильтру, новые первыми.
func (r *PostgresRepository) ListApplications(ctx context.Context, f model.ApplicationFilter) ([]model.Application, error) {
	query, args, err := r.listApplicationsQuery(f)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select applications: %w", err)
	}
	defer rows.Close()

	var res []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		res = append(res, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetStats возвращает количество заявок по статусам и по полу заявителей.
func (r *PostgresRepository) GetStats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE a.status = $1),
		        COUNT(*) FILTER (WHERE a.status = $2),
		        COUNT(*) FILTER (WHERE a.status = $3),
		        COUNT(*) FILTER (WHERE s.gender = $4),
		        COUNT(*) FILTER (WHERE s.gender = $5)
		 FROM applications a
		 JOIN students s ON s.id = a.student_id`,
		string(model.ApplicationStatusPending),
		string(model.ApplicationStatusApproved),
		string(model.ApplicationStatusRejected),
		string(model.GenderMale),
		string(model.GenderFemale),
	).Scan(&st.Total, &st.Pending, &st.Approved, &st.Rejected, &st.MaleCount, &st.FemaleCount)
	if err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}
	return &st, nil
}

// ApplyDecision сохраняет решение по заявке одной транзакцией: смена статуса из PENDING,
// уменьшение числа свободных мест, занятие комнаты и создание записи о заселении.
// При конфликте сериализации транзакция повторяется.
func (r *PostgresRepository) ApplyDecision(ctx context.Context, applicationID string, status model.ApplicationStatus, remarks string, alloc *model.Allocation) error {
	return r.withRetry(ctx, func() error {
		return r.applyDecision(ctx, applicationID, status, remarks, alloc)
	})
}

func (r *PostgresRepository) applyDecision(ctx context.Context, applicationID string, status model.ApplicationStatus, remarks string, alloc *model.Allocation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE applications SET status = $2, remarks = NULLIF($3, ''), updated_at = now()
		 WHERE id = $1 AND status = $4`,
		applicationID, string(status), remarks, string(model.ApplicationStatusPending),
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPending
	}

	if alloc != nil {
		tag, err = tx.Exec(ctx,
			`UPDATE hostels SET available_rooms = available_rooms - 1
			 WHERE id = $1 AND available_rooms > 0`,
			alloc.HostelID,
		)
		if err != nil {
			return fmt.Errorf("decrement available rooms: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRoomUnavailable
		}

		tag, err = tx.Exec(ctx,
			`UPDATE rooms SET application_id = $3
			 WHERE hostel_id = $1 AND room_number = $2 AND application_id IS NULL`,
			alloc.HostelID, alloc.RoomNumber, applicationID,
		)
		if err != nil {
			return fmt.Errorf("claim room: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRoomUnavailable
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO allocations (id, application_id, hostel_id, room_number, allotment_date, payment_status, payment_amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
			 RETURNING created_at, updated_at`,
			alloc.ID, applicationID, alloc.HostelID, alloc.RoomNumber, alloc.AllotmentDate,
			string(alloc.PaymentStatus), alloc.PaymentAmount.String(),
		).Scan(&alloc.CreatedAt, &alloc.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrRoomUnavailable
			}
			return fmt.Errorf("insert allocation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
