package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
)

// firstRoomNumber — номер, с которого нумеруются комнаты нового корпуса.
const firstRoomNumber = 101

// CreateHostel создаёт корпус и заводит пул его комнат.
func (r *PostgresRepository) CreateHostel(ctx context.Context, h *model.Hostel) error {
	facilities := h.Facilities
	if facilities == nil {
		facilities = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO hostels (id, name, gender, total_rooms, available_rooms, facilities)
		 VALUES ($1, $2, $3, $4, $4, $5)
		 RETURNING created_at`,
		h.ID, h.Name, string(h.Gender), h.TotalRooms, facilities,
	).Scan(&h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrHostelExists, h.Name)
		}
		return fmt.Errorf("insert hostel: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO rooms (hostel_id, room_number)
		 SELECT $1, ($2 + g)::text FROM generate_series(0, $3 - 1) AS g`,
		h.ID, firstRoomNumber, h.TotalRooms,
	)
	if err != nil {
		return fmt.Errorf("insert rooms: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	h.AvailableRooms = h.TotalRooms
	h.Facilities = facilities

	return nil
}

// ListHostels возвращает корпуса вместе с пулом свободных комнат. Пустой gender — все корпуса.
func (r *PostgresRepository) ListHostels(ctx context.Context, gender model.Gender) ([]model.Hostel, error) {
	q := r.sb.Select(
		"h.id", "h.name", "h.gender", "h.total_rooms", "h.available_rooms", "h.facilities", "h.created_at",
		`ARRAY(SELECT rm.room_number FROM rooms rm
		       WHERE rm.hostel_id = h.id AND rm.application_id IS NULL
		       ORDER BY length(rm.room_number), rm.room_number)`,
	).From("hostels h")

	if gender != "" {
		q = q.Where(sq.Eq{"h.gender": string(gender)})
	}

	query, args, err := q.OrderBy("h.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select hostels: %w", err)
	}
	defer rows.Close()

	var res []model.Hostel
	for rows.Next() {
		var (
			h model.Hostel
			g string
		)
		if err := rows.Scan(&h.ID, &h.Name, &g, &h.TotalRooms, &h.AvailableRooms, &h.Facilities, &h.CreatedAt, &h.FreeRooms); err != nil {
			return nil, fmt.Errorf("scan hostel: %w", err)
		}
		h.Gender = model.Gender(g)
		res = append(res, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}
