package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpass/backend/internal/domain/model"
)

type RosterRepo struct {
	pool *pgxpool.Pool
}

func NewRosterRepo(pool *pgxpool.Pool) *RosterRepo {
	return &RosterRepo{pool: pool}
}

func (r *RosterRepo) ClassExists(ctx context.Context, classID string) (bool, error) {
	if classID == "" {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM classes
WHERE id = $1
LIMIT 1
`, classID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup class: %w", err)
	}

	return true, nil
}

func (r *RosterRepo) IsEnrolled(ctx context.Context, classID string, memberID int64) (bool, error) {
	if classID == "" || memberID <= 0 {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM enrollments
WHERE class_id = $1 AND member_id = $2
LIMIT 1
`, classID, memberID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup enrollment: %w", err)
	}

	return true, nil
}

func (r *RosterRepo) ScheduleFor(ctx context.Context, classID string) ([]model.ScheduleSlot, error) {
	if classID == "" {
		return nil, fmt.Errorf("class id is required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT weekday, start_minute, end_minute
FROM class_schedule
WHERE class_id = $1
ORDER BY weekday, start_minute
`, classID)
	if err != nil {
		return nil, fmt.Errorf("list class schedule: %w", err)
	}
	defer rows.Close()

	var slots []model.ScheduleSlot
	for rows.Next() {
		var weekday int
		var slot model.ScheduleSlot
		if err := rows.Scan(&weekday, &slot.StartMinute, &slot.EndMinute); err != nil {
			return nil, fmt.Errorf("scan schedule slot: %w", err)
		}
		slot.Weekday = time.Weekday(weekday)
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class schedule: %w", err)
	}

	return slots, nil
}

func (r *RosterRepo) ListEnrolled(ctx context.Context, classID string) ([]int64, error) {
	if classID == "" {
		return nil, fmt.Errorf("class id is required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT member_id
FROM enrollments
WHERE class_id = $1
ORDER BY member_id
`, classID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled members: %w", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan enrolled member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrolled members: %w", err)
	}

	return members, nil
}
