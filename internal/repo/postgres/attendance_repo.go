package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpass/backend/internal/domain/enums"
	"github.com/classpass/backend/internal/domain/model"
	checkinsvc "github.com/classpass/backend/internal/services/checkin"
)

// AttendanceRepo is the durable ledger. The attendance_entries table
// carries a UNIQUE (class_id, member_id, day_key) constraint so a lost
// race on the same day surfaces as checkin.ErrDuplicateEntry.
type AttendanceRepo struct {
	pool *pgxpool.Pool
}

func NewAttendanceRepo(pool *pgxpool.Pool) *AttendanceRepo {
	return &AttendanceRepo{pool: pool}
}

func (r *AttendanceRepo) Append(ctx context.Context, entry model.AttendanceEntry) error {
	if entry.ClassID == "" || entry.MemberID <= 0 || entry.DayKey == "" {
		return fmt.Errorf("invalid attendance entry")
	}

	result, err := r.pool.Exec(ctx, `
INSERT INTO attendance_entries (
	id,
	class_id,
	member_id,
	day_key,
	redeemed_at,
	status,
	session_id
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (class_id, member_id, day_key) DO NOTHING
`, entry.ID, entry.ClassID, entry.MemberID, entry.DayKey, entry.RedeemedAt, string(entry.Status), entry.SessionID)
	if err != nil {
		return fmt.Errorf("insert attendance entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return checkinsvc.ErrDuplicateEntry
	}

	return nil
}

func (r *AttendanceRepo) ExistsFor(ctx context.Context, classID string, memberID int64, dayKey string) (bool, error) {
	if classID == "" || memberID <= 0 || dayKey == "" {
		return false, nil
	}

	var one int
	err := r.pool.QueryRow(ctx, `
SELECT 1
FROM attendance_entries
WHERE class_id = $1 AND member_id = $2 AND day_key = $3
LIMIT 1
`, classID, memberID, dayKey).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup attendance entry: %w", err)
	}

	return true, nil
}

func (r *AttendanceRepo) ListForClassDay(ctx context.Context, classID, dayKey string) ([]model.AttendanceEntry, error) {
	if classID == "" || dayKey == "" {
		return nil, fmt.Errorf("class id and day key are required")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, class_id, member_id, day_key, redeemed_at, status, session_id
FROM attendance_entries
WHERE class_id = $1 AND day_key = $2
ORDER BY redeemed_at
`, classID, dayKey)
	if err != nil {
		return nil, fmt.Errorf("list attendance entries: %w", err)
	}
	defer rows.Close()

	var entries []model.AttendanceEntry
	for rows.Next() {
		var entry model.AttendanceEntry
		var status string
		if err := rows.Scan(
			&entry.ID,
			&entry.ClassID,
			&entry.MemberID,
			&entry.DayKey,
			&entry.RedeemedAt,
			&status,
			&entry.SessionID,
		); err != nil {
			return nil, fmt.Errorf("scan attendance entry: %w", err)
		}
		entry.Status = enums.AttendanceStatus(status)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance entries: %w", err)
	}

	return entries, nil
}
