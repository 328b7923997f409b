package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"hotel_ops/internal/models"

	"github.com/google/uuid"
)

type CleaningLogSQLite struct {
	db *sql.DB
}

func NewCleaningLogSQLite(db *sql.DB) *CleaningLogSQLite { return &CleaningLogSQLite{db: db} }

var _ CleaningLogRepo = (*CleaningLogSQLite)(nil)

// Append inserts a new log. If ID is empty it is generated.
func (r *CleaningLogSQLite) Append(ctx context.Context, l models.CleaningLog) (models.CleaningLog, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.StartedAt = l.StartedAt.UTC()
	l.EndedAt = l.EndedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cleaning_logs (id, room_id, room_number, started_at, ended_at, duration_minutes, employee_name, device_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		l.ID,
		l.RoomID,
		l.RoomNumber,
		l.StartedAt,
		l.EndedAt,
		l.DurationMinutes,
		l.EmployeeName,
		l.DeviceID,
	)
	if err != nil {
		return models.CleaningLog{}, err
	}
	return l, nil
}

// List returns logs whose end falls in [from, to] (inclusive), optionally
// for one room number, newest first.
func (r *CleaningLogSQLite) List(ctx context.Context, from, to time.Time, roomNumber string) ([]models.CleaningLog, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "ended_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "ended_at <= ?")
		args = append(args, to.UTC())
	}
	if roomNumber = strings.TrimSpace(roomNumber); roomNumber != "" {
		conds = append(conds, "room_number = ?")
		args = append(args, roomNumber)
	}

	q := `SELECT id, room_id, room_number, started_at, ended_at, duration_minutes, employee_name, device_id FROM cleaning_logs`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY ended_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CleaningLog, 0, 64)
	for rows.Next() {
		var l models.CleaningLog
		if err := rows.Scan(&l.ID, &l.RoomID, &l.RoomNumber, &l.StartedAt, &l.EndedAt, &l.DurationMinutes, &l.EmployeeName, &l.DeviceID); err != nil {
			return nil, err
		}
		l.StartedAt = l.StartedAt.UTC()
		l.EndedAt = l.EndedAt.UTC()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
