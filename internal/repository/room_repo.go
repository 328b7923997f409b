package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel_ops/internal/models"

	"github.com/google/uuid"
)

type RoomSQLite struct {
	db *sql.DB
}

func NewRoomSQLite(db *sql.DB) *RoomSQLite {
	return &RoomSQLite{db: db}
}

var _ RoomRepo = (*RoomSQLite)(nil)

const (
	roomColumns = `id, number, type, state, last_cleaned, last_maintenance, cleaning_by`

	insertRoomSQL = `
		INSERT INTO rooms (id, number, type, state, last_cleaned, last_maintenance, cleaning_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	selectRoomSQL = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`

	updateCleaningBySQL = `UPDATE rooms SET cleaning_by = ? WHERE id = ?`

	// One document write: state, timestamp and lock release together.
	markCleanedSQL = `UPDATE rooms SET state = ?, last_cleaned = ?, cleaning_by = NULL WHERE id = ?`

	updateLastMaintenanceSQL = `UPDATE rooms SET last_maintenance = ? WHERE id = ?`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (models.Room, error) {
	var (
		r               models.Room
		lastCleaned     sql.NullTime
		lastMaintenance sql.NullTime
		cleaningBy      sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Number, &r.Type, &r.State, &lastCleaned, &lastMaintenance, &cleaningBy); err != nil {
		return models.Room{}, err
	}
	r.LastCleaned = nullTimePtr(lastCleaned)
	r.LastMaintenance = nullTimePtr(lastMaintenance)
	r.CleaningBy = nullStringPtr(cleaningBy)
	return r, nil
}

func timeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Insert creates a room. Used by seeding and admin tooling only.
func (r *RoomSQLite) Insert(ctx context.Context, room models.Room) (models.Room, error) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.Type == "" {
		room.Type = models.RoomTypeRoom
	}
	_, err := r.db.ExecContext(ctx, insertRoomSQL,
		room.ID,
		room.Number,
		room.Type,
		room.State,
		timeArg(room.LastCleaned),
		timeArg(room.LastMaintenance),
		stringArg(room.CleaningBy),
	)
	if err != nil {
		return models.Room{}, fmt.Errorf("insert room %q: %w", room.Number, err)
	}
	return room, nil
}

// Get is a point read by id.
func (r *RoomSQLite) Get(ctx context.Context, id string) (models.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, selectRoomSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Room{}, ErrNotFound
		}
		return models.Room{}, fmt.Errorf("select room %q: %w", id, err)
	}
	return room, nil
}

// List returns rooms ordered by number, optionally filtered by state inclusion.
func (r *RoomSQLite) List(ctx context.Context, states []string) ([]models.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	args := make([]any, 0, len(states))
	if len(states) > 0 {
		marks := make([]string, 0, len(states))
		for _, s := range states {
			marks = append(marks, "?")
			args = append(args, s)
		}
		q += " WHERE state IN (" + strings.Join(marks, ", ") + ")"
	}
	q += " ORDER BY number ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Room, 0, 16)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCleaningBy writes (or clears, with nil) the room lock. It is a plain
// field write: two devices racing both succeed and the last one wins.
func (r *RoomSQLite) SetCleaningBy(ctx context.Context, id string, employee *string) error {
	return execOneRow(ctx, r.db, updateCleaningBySQL, stringArg(employee), id)
}

func (r *RoomSQLite) MarkCleaned(ctx context.Context, id string, at time.Time) error {
	return execOneRow(ctx, r.db, markCleanedSQL, models.RoomStateClean, at.UTC(), id)
}

func (r *RoomSQLite) SetLastMaintenance(ctx context.Context, id string, at time.Time) error {
	return execOneRow(ctx, r.db, updateLastMaintenanceSQL, at.UTC(), id)
}
