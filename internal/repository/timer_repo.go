package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hotel_ops/internal/models"
)

// TimerSQLite keeps open sessions in the timer_sessions table. Times are
// stored as unix milliseconds so recovery is exact.
type TimerSQLite struct {
	db *sql.DB
}

func NewTimerSQLite(db *sql.DB) *TimerSQLite {
	return &TimerSQLite{db: db}
}

var _ TimerStore = (*TimerSQLite)(nil)

const (
	upsertTimerSQL = `
		INSERT INTO timer_sessions (room_id, start_ms, total_paused_ms, pause_start_ms, employee_name, room_number, device_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			start_ms=excluded.start_ms,
			total_paused_ms=excluded.total_paused_ms,
			pause_start_ms=excluded.pause_start_ms,
			employee_name=excluded.employee_name,
			room_number=excluded.room_number,
			device_id=excluded.device_id
	`
	selectTimerSQL = `
		SELECT room_id, start_ms, total_paused_ms, pause_start_ms, employee_name, room_number, device_id
		FROM timer_sessions WHERE room_id = ?
	`
	deleteTimerSQL = `DELETE FROM timer_sessions WHERE room_id = ?`
)

func (r *TimerSQLite) Save(ctx context.Context, rec models.TimerRecord) error {
	_, err := r.db.ExecContext(ctx, upsertTimerSQL,
		rec.RoomID,
		rec.StartTime.UnixMilli(),
		rec.TotalPaused.Milliseconds(),
		unixMilliOrZero(rec.PauseStart),
		rec.EmployeeName,
		rec.RoomNumber,
		rec.DeviceID,
	)
	return err
}

func (r *TimerSQLite) Load(ctx context.Context, roomID string) (models.TimerRecord, bool, error) {
	var (
		rec                        models.TimerRecord
		startMS, pausedMS, pauseMS int64
		employee, number, deviceID sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectTimerSQL, roomID).
		Scan(&rec.RoomID, &startMS, &pausedMS, &pauseMS, &employee, &number, &deviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TimerRecord{}, false, nil
		}
		return models.TimerRecord{}, false, err
	}
	rec.StartTime = time.UnixMilli(startMS).UTC()
	rec.TotalPaused = time.Duration(pausedMS) * time.Millisecond
	rec.PauseStart = timeFromUnixMilli(pauseMS)
	rec.EmployeeName = employee.String
	rec.RoomNumber = number.String
	rec.DeviceID = deviceID.String
	return rec, true, nil
}

// unixMilliOrZero keeps "not paused" as 0 rather than the zero time's epoch offset.
func unixMilliOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeFromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (r *TimerSQLite) Clear(ctx context.Context, roomID string) error {
	_, err := r.db.ExecContext(ctx, deleteTimerSQL, roomID)
	return err
}
