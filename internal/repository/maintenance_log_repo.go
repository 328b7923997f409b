package repository

import (
	"context"
	"database/sql"
	"time"

	"hotel_ops/internal/models"

	"github.com/google/uuid"
)

type MaintenanceLogSQLite struct {
	db *sql.DB
}

func NewMaintenanceLogSQLite(db *sql.DB) *MaintenanceLogSQLite {
	return &MaintenanceLogSQLite{db: db}
}

var _ MaintenanceLogRepo = (*MaintenanceLogSQLite)(nil)

func (r *MaintenanceLogSQLite) Append(ctx context.Context, l models.MaintenanceLog) (models.MaintenanceLog, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.LoggedAt.IsZero() {
		l.LoggedAt = time.Now().UTC()
	} else {
		l.LoggedAt = l.LoggedAt.UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_logs (id, room_id, room_number, action, logged_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.RoomID, l.RoomNumber, l.Action, l.LoggedAt,
	)
	if err != nil {
		return models.MaintenanceLog{}, err
	}
	return l, nil
}

// List returns logs newest first; an empty roomID lists every room.
func (r *MaintenanceLogSQLite) List(ctx context.Context, roomID string) ([]models.MaintenanceLog, error) {
	q := `SELECT id, room_id, room_number, action, logged_at FROM maintenance_logs`
	var args []any
	if roomID != "" {
		q += ` WHERE room_id = ?`
		args = append(args, roomID)
	}
	q += ` ORDER BY logged_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MaintenanceLog
	for rows.Next() {
		var l models.MaintenanceLog
		if err := rows.Scan(&l.ID, &l.RoomID, &l.RoomNumber, &l.Action, &l.LoggedAt); err != nil {
			return nil, err
		}
		l.LoggedAt = l.LoggedAt.UTC()
		out = append(out, l)
	}
	return out, rows.Err()
}
